package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mybglist/mybglist-server/internal/domain"
)

func (s *Server) registerSeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "seed",
		Method:      http.MethodPut,
		Path:        "/seed",
		Summary:     "Import dataset",
		Description: "Imports the configured board game dataset. Rows whose ID is already stored are skipped, so the call is safe to repeat. Requires the Administrator role.",
		Tags:        []string{"Seed"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSeed)
}

// SeedResponse reports an import run. Counts are totals after the run.
type SeedResponse struct {
	BoardGames  int    `json:"BoardGames" doc:"Board games stored after the run"`
	Domains     int    `json:"Domains" doc:"Domains stored after the run"`
	Mechanics   int    `json:"Mechanics" doc:"Mechanics stored after the run"`
	SkippedRows int    `json:"SkippedRows" doc:"Rows skipped for a missing ID or name, or an ID already stored"`
	RunID       string `json:"RunId" doc:"Identifier of this run in the server log"`
	Duration    string `json:"Duration" doc:"Wall time of the run"`
}

// SeedOutput wraps the seed response for Huma.
type SeedOutput struct {
	Body SeedResponse
}

func (s *Server) handleSeed(ctx context.Context, _ *struct{}) (*SeedOutput, error) {
	claims, err := requireRole(ctx, domain.RoleAdministrator)
	if err != nil {
		return nil, err
	}
	s.logger.Info("seed requested", "user_id", claims.UserID)

	res, err := s.services.Seed.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &SeedOutput{
		Body: SeedResponse{
			BoardGames:  res.BoardGames,
			Domains:     res.Domains,
			Mechanics:   res.Mechanics,
			SkippedRows: res.SkippedRows,
			RunID:       res.RunID,
			Duration:    res.Duration.String(),
		},
	}, nil
}
