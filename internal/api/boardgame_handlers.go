package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mybglist/mybglist-server/internal/domain"
	"github.com/mybglist/mybglist-server/internal/query"
	"github.com/mybglist/mybglist-server/internal/service"
)

func (s *Server) registerBoardGameRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBoardGames",
		Method:      http.MethodGet,
		Path:        boardGamesPath,
		Summary:     "List board games",
		Description: listDescription(query.EntityBoardGame, "board games"),
		Tags:        []string{"Board Games"},
	}, s.handleListBoardGames)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBoardGame",
		Method:      http.MethodGet,
		Path:        boardGamesPath + "/{id}",
		Summary:     "Get board game",
		Description: "Returns a board game with its domains and mechanics. Data is null when the ID does not exist.",
		Tags:        []string{"Board Games"},
	}, s.handleGetBoardGame)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBoardGame",
		Method:      http.MethodPost,
		Path:        boardGamesPath,
		Summary:     "Update board game",
		Description: "Changes Name and Year of an existing board game. Data is null when the ID does not exist. Requires the Moderator role.",
		Tags:        []string{"Board Games"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBoardGame)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBoardGame",
		Method:      http.MethodDelete,
		Path:        boardGamesPath + "/{id}",
		Summary:     "Delete board game",
		Description: "Deletes a board game and its links, returning the deleted row. Requires the Administrator role.",
		Tags:        []string{"Board Games"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBoardGame)
}

// ListBoardGamesOutput is one page of board games.
type ListBoardGamesOutput struct {
	Body query.Envelope[[]domain.BoardGame]
}

// BoardGameOutput wraps a single board game, or null.
type BoardGameOutput struct {
	Body query.Envelope[*domain.BoardGame]
}

// BoardGameDetailsOutput wraps a board game with its taxonomy, or null.
type BoardGameDetailsOutput struct {
	Body query.Envelope[*service.BoardGameDetails]
}

// UpdateBoardGameRequest is the editable subset of a board game.
type UpdateBoardGameRequest struct {
	ID   int    `json:"Id" validate:"required,min=1" doc:"Board game ID"`
	Name string `json:"Name,omitempty" validate:"omitempty,notblank,max=200" doc:"New name; unchanged when empty"`
	Year int    `json:"Year,omitempty" validate:"omitempty,min=1" doc:"New publication year; unchanged when 0"`
}

// UpdateBoardGameInput wraps the update body for Huma.
type UpdateBoardGameInput struct {
	Body UpdateBoardGameRequest
}

func (s *Server) handleListBoardGames(ctx context.Context, input *ListInput) (*ListBoardGamesOutput, error) {
	env, err := s.services.Catalog.ListBoardGames(ctx, boardGamesPath, input.request())
	if err != nil {
		return nil, err
	}
	return &ListBoardGamesOutput{Body: env}, nil
}

func (s *Server) handleGetBoardGame(ctx context.Context, input *IDInput) (*BoardGameDetailsOutput, error) {
	details, err := s.services.Catalog.GetBoardGame(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BoardGameDetailsOutput{
		Body: query.NewSingle(details, boardGamesPath+"/"+strconv.Itoa(input.ID), http.MethodGet),
	}, nil
}

func (s *Server) handleUpdateBoardGame(ctx context.Context, input *UpdateBoardGameInput) (*BoardGameOutput, error) {
	if _, err := requireRole(ctx, domain.RoleModerator); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	g, err := s.services.Catalog.UpdateBoardGame(ctx, domain.BoardGameUpdate{
		ID:   input.Body.ID,
		Name: input.Body.Name,
		Year: input.Body.Year,
	})
	if err != nil {
		return nil, err
	}
	return &BoardGameOutput{Body: query.NewSingle(g, boardGamesPath, http.MethodPost)}, nil
}

func (s *Server) handleDeleteBoardGame(ctx context.Context, input *IDInput) (*BoardGameOutput, error) {
	if _, err := requireRole(ctx, domain.RoleAdministrator); err != nil {
		return nil, err
	}

	g, err := s.services.Catalog.DeleteBoardGame(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BoardGameOutput{
		Body: query.NewSingle(g, boardGamesPath+"/"+strconv.Itoa(input.ID), http.MethodDelete),
	}, nil
}
