package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mybglist/mybglist-server/internal/domain"
	"github.com/mybglist/mybglist-server/internal/query"
)

// taxonomyRoutes describes the list, update and delete operations of one
// taxonomy entity. Domains and mechanics differ only in name and service calls.
type taxonomyRoutes[T any] struct {
	entity   query.Entity
	path     string
	singular string
	plural   string
	tag      string
	list     func(ctx context.Context, basePath string, req query.Request) (query.Envelope[[]T], error)
	update   func(ctx context.Context, u domain.TaxonomyUpdate) (*T, error)
	remove   func(ctx context.Context, id int) (*T, error)
}

// UpdateTaxonomyRequest renames a domain or mechanic.
type UpdateTaxonomyRequest struct {
	ID   int    `json:"Id" validate:"required,min=1" doc:"Row ID"`
	Name string `json:"Name,omitempty" validate:"omitempty,notblank,max=200" doc:"New name; unchanged when empty"`
}

// UpdateTaxonomyInput wraps the update body for Huma.
type UpdateTaxonomyInput struct {
	Body UpdateTaxonomyRequest
}

// ListOutput is one page of rows.
type ListOutput[T any] struct {
	Body query.Envelope[[]T]
}

// SingleOutput wraps one row, or null.
type SingleOutput[T any] struct {
	Body query.Envelope[*T]
}

func (s *Server) registerDomainRoutes() {
	registerTaxonomy(s, taxonomyRoutes[domain.Domain]{
		entity:   query.EntityDomain,
		path:     domainsPath,
		singular: "Domain",
		plural:   "Domains",
		tag:      "Domains",
		list:     s.services.Catalog.ListDomains,
		update:   s.services.Catalog.UpdateDomain,
		remove:   s.services.Catalog.DeleteDomain,
	})
}

func (s *Server) registerMechanicRoutes() {
	registerTaxonomy(s, taxonomyRoutes[domain.Mechanic]{
		entity:   query.EntityMechanic,
		path:     mechanicsPath,
		singular: "Mechanic",
		plural:   "Mechanics",
		tag:      "Mechanics",
		list:     s.services.Catalog.ListMechanics,
		update:   s.services.Catalog.UpdateMechanic,
		remove:   s.services.Catalog.DeleteMechanic,
	})
}

func registerTaxonomy[T any](s *Server, r taxonomyRoutes[T]) {
	huma.Register(s.api, huma.Operation{
		OperationID: "list" + r.plural,
		Method:      http.MethodGet,
		Path:        r.path,
		Summary:     "List " + r.tag,
		Description: listDescription(r.entity, r.tag),
		Tags:        []string{r.tag},
	}, func(ctx context.Context, input *ListInput) (*ListOutput[T], error) {
		env, err := r.list(ctx, r.path, input.request())
		if err != nil {
			return nil, err
		}
		return &ListOutput[T]{Body: env}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "update" + r.singular,
		Method:      http.MethodPost,
		Path:        r.path,
		Summary:     "Rename " + r.singular,
		Description: "Changes the Name of an existing row. Data is null when the ID does not exist. Requires the Moderator role.",
		Tags:        []string{r.tag},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *UpdateTaxonomyInput) (*SingleOutput[T], error) {
		if _, err := requireRole(ctx, domain.RoleModerator); err != nil {
			return nil, err
		}
		if err := s.validator.Validate(input.Body); err != nil {
			return nil, err
		}
		row, err := r.update(ctx, domain.TaxonomyUpdate{ID: input.Body.ID, Name: input.Body.Name})
		if err != nil {
			return nil, err
		}
		return &SingleOutput[T]{Body: query.NewSingle(row, r.path, http.MethodPost)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "delete" + r.singular,
		Method:      http.MethodDelete,
		Path:        r.path + "/{id}",
		Summary:     "Delete " + r.singular,
		Description: "Deletes a row and its board game links, returning the deleted row. Requires the Administrator role.",
		Tags:        []string{r.tag},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *IDInput) (*SingleOutput[T], error) {
		if _, err := requireRole(ctx, domain.RoleAdministrator); err != nil {
			return nil, err
		}
		row, err := r.remove(ctx, input.ID)
		if err != nil {
			return nil, err
		}
		return &SingleOutput[T]{
			Body: query.NewSingle(row, r.path+"/"+strconv.Itoa(input.ID), http.MethodDelete),
		}, nil
	})
}
