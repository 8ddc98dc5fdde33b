// Package ocr turns uploaded invoice scans into raw text.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lightmyfireadmin/plombipro-app/internal/config"
)

// ErrNoText is returned when the provider produced no result.
var ErrNoText = errors.New("OCR processing failed or returned no results.")

// Provider extracts text from an image or scanned document.
type Provider interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// NewProvider picks the provider configured by OCR_PROVIDER.
func NewProvider(cfg *config.Config) (Provider, error) {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	switch cfg.OcrProvider {
	case config.OcrProviderAzure:
		if cfg.AzureVisionEndpoint == "" || cfg.AzureVisionKey == "" {
			return nil, fmt.Errorf("azure OCR requires AZURE_VISION_ENDPOINT and AZURE_VISION_KEY")
		}
		log.Printf("OCR provider: Azure Computer Vision (%s)", cfg.AzureVisionEndpoint)
		return NewAzureProvider(cfg.AzureVisionEndpoint, cfg.AzureVisionKey), nil
	default:
		if cfg.OcrSpaceApiKey == "" {
			log.Println("WARN: OCR_SPACE_API_KEY not configured, OCR requests will be rejected upstream.")
		}
		return NewOcrSpaceProvider(cfg.OcrSpaceURL, cfg.OcrSpaceApiKey, cfg.OcrLanguage, timeout), nil
	}
}
