package purchase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"oc-ticketing/internal/apiclient"
	"oc-ticketing/internal/logger"
	"oc-ticketing/internal/models"
)

var ErrNoDownloadURL = errors.New("purchase response has no download url")

// Service submits purchases to POST /api/purchases.
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

// Buy sends the request with the given idempotency key. The backend answers a
// repeated key with the original receipt.
func (s *Service) Buy(ctx context.Context, req models.PurchaseRequest, idempotencyKey string) (*models.Purchase, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}

	var p models.Purchase
	if err := s.client.Send(ctx, http.MethodPost, "/api/purchases", req, headers, &p); err != nil {
		return nil, fmt.Errorf("buy match %d section %d: %w", req.MatchID, req.SectionID, err)
	}
	if p.DownloadURL == "" {
		return nil, ErrNoDownloadURL
	}

	s.logger.LogPurchase("BUY", p.PurchaseID, fmt.Sprintf("match %d section %d x%d", req.MatchID, req.SectionID, req.Quantity))
	return &p, nil
}
