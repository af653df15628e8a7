package receipt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"oc-ticketing/internal/logger"
	"oc-ticketing/internal/models"
)

var ErrNoPurchase = errors.New("no purchase information")

type Fetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Downloader fetches the receipt document with the session's credentials and
// keeps a copy under dir.
type Downloader struct {
	fetcher Fetcher
	dir     string
	logger  *logger.Logger
}

func NewDownloader(f Fetcher, dir string, l *logger.Logger) *Downloader {
	if l == nil {
		l = logger.Nop()
	}
	return &Downloader{fetcher: f, dir: dir, logger: l}
}

// FileName is "<purchaseId>.pdf".
func FileName(p *models.Purchase) string {
	return filepath.Base(filepath.Clean("/"+p.PurchaseID)) + ".pdf"
}

func (d *Downloader) Fetch(ctx context.Context, p *models.Purchase) ([]byte, string, error) {
	if p == nil || p.DownloadURL == "" {
		return nil, "", ErrNoPurchase
	}
	data, err := d.fetcher.Download(ctx, p.DownloadURL)
	if err != nil {
		d.logger.Error("RECEIPT", fmt.Sprintf("Download failed for %s: %v", p.PurchaseID, err))
		return nil, "", fmt.Errorf("download receipt %s: %w", p.PurchaseID, err)
	}
	return data, FileName(p), nil
}

// Save downloads the receipt and writes it to dir, returning the file path.
func (d *Downloader) Save(ctx context.Context, p *models.Purchase) (string, error) {
	data, name, err := d.Fetch(ctx, p)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	d.logger.LogPurchase("RECEIPT", p.PurchaseID, "saved to "+path)
	return path, nil
}
