package matches

import (
	"context"
	"fmt"
	"net/http"

	"oc-ticketing/internal/apiclient"
	"oc-ticketing/internal/logger"
	"oc-ticketing/internal/models"
)

// Service talks to the /api/matches resource.
type Service struct {
	client *apiclient.Client
	logger *logger.Logger
}

func NewService(client *apiclient.Client, l *logger.Logger) *Service {
	if l == nil {
		l = logger.Nop()
	}
	return &Service{client: client, logger: l}
}

func (s *Service) normalize(raw models.RawMatch) models.Match {
	if err := Validate(raw); err != nil {
		s.logger.Warn("MATCHES", err.Error())
	}
	m := Normalize(raw)
	if m.Home == "" {
		m.Home = models.HomeClub
	}
	return m
}

func (s *Service) List(ctx context.Context) ([]models.Match, error) {
	var raws []models.RawMatch
	if err := s.client.GetJSON(ctx, "/api/matches", &raws); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	out := make([]models.Match, 0, len(raws))
	for _, raw := range raws {
		out = append(out, s.normalize(raw))
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in models.MatchInput) (models.Match, error) {
	var raw models.RawMatch
	if err := s.client.Send(ctx, http.MethodPost, "/api/matches", in, nil, &raw); err != nil {
		return models.Match{}, fmt.Errorf("create match: %w", err)
	}
	return s.normalize(raw), nil
}

func (s *Service) Update(ctx context.Context, id int64, upd models.MatchUpdate) (models.Match, error) {
	var raw models.RawMatch
	if err := s.client.Send(ctx, http.MethodPatch, fmt.Sprintf("/api/matches/%d", id), upd, nil, &raw); err != nil {
		return models.Match{}, fmt.Errorf("update match %d: %w", id, err)
	}
	return s.normalize(raw), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.client.Send(ctx, http.MethodDelete, fmt.Sprintf("/api/matches/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete match %d: %w", id, err)
	}
	return nil
}

func (s *Service) Sections(ctx context.Context, matchID int64) ([]models.Section, error) {
	var sections []models.Section
	if err := s.client.GetJSON(ctx, fmt.Sprintf("/api/matches/%d/sections", matchID), &sections); err != nil {
		return nil, fmt.Errorf("list sections for match %d: %w", matchID, err)
	}
	return sections, nil
}
