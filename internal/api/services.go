package api

import "github.com/mybglist/mybglist-server/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Catalog *service.CatalogService
	Seed    *service.SeedService
	Account *service.AccountService
}
