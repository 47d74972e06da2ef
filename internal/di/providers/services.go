package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/mybglist/mybglist-server/internal/auth"
	"github.com/mybglist/mybglist-server/internal/config"
	"github.com/mybglist/mybglist-server/internal/ingest"
	"github.com/mybglist/mybglist-server/internal/logger"
	"github.com/mybglist/mybglist-server/internal/service"
	"github.com/mybglist/mybglist-server/internal/validation"
)

// ProvideCatalogService provides the catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, cacheHandle.Cache, log.Component("catalog")), nil
}

// ProvideSeedService provides the dataset import service.
func ProvideSeedService(i do.Injector) (*service.SeedService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	policy, err := ingest.ParseLinkPolicy(cfg.Seed.LinkPolicy)
	if err != nil {
		return nil, err
	}

	return service.NewSeedService(storeHandle.Store, cacheHandle.Cache, cfg.Seed.DatasetPath, policy, log.Component("seed")), nil
}

// ProvideAccountService provides the account service and bootstraps the
// administrator when one is configured.
func ProvideAccountService(i do.Injector) (*service.AccountService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	hasher := do.MustInvoke[*auth.PasswordHasher](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewAccountService(storeHandle.Store, hasher, tokens, validation.New(), log.Component("account"))

	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		n, err := storeHandle.CountUsers(context.Background())
		if err != nil {
			return nil, err
		}
		if n == 0 {
			log.Warn("No accounts and no bootstrap administrator; set ADMIN_EMAIL and ADMIN_PASSWORD to manage the catalog")
		}
		return svc, nil
	}
	if err := svc.EnsureAdmin(context.Background(), cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return nil, err
	}
	return svc, nil
}
