package app

import (
	"net/http"

	"oc-ticketing/internal/admin"
	"oc-ticketing/internal/apiclient"
	"oc-ticketing/internal/events"
	"oc-ticketing/internal/logger"
	"oc-ticketing/internal/matches"
	"oc-ticketing/internal/purchase"
	"oc-ticketing/internal/receipt"
	"oc-ticketing/internal/session"
)

// Factory builds sessions that share the process-wide collaborators but
// each read their own credential.
type Factory struct {
	BaseURL    string
	HTTPClient *http.Client
	Metrics    *apiclient.Metrics
	Teams      admin.TeamSource
	Publisher  events.Publisher
	QR         *receipt.QRGenerator
	ReceiptDir string
	Logger     *logger.Logger
}

func (f *Factory) New(id string, creds session.Store) *App {
	if creds == nil {
		creds = session.NewMemoryStore("")
	}
	opts := []apiclient.Option{apiclient.WithLogger(f.Logger), apiclient.WithMetrics(f.Metrics)}
	if f.HTTPClient != nil {
		opts = append(opts, apiclient.WithHTTPClient(f.HTTPClient))
	}
	client := apiclient.New(f.BaseURL, creds, opts...)

	return New(id, Deps{
		Credentials: creds,
		Backend:     matches.NewService(client, f.Logger),
		Buyer:       purchase.NewService(client, f.Logger),
		Teams:       f.Teams,
		Publisher:   f.Publisher,
		QR:          f.QR,
		Receipts:    receipt.NewDownloader(client, f.ReceiptDir, f.Logger),
		Logger:      f.Logger,
	})
}
