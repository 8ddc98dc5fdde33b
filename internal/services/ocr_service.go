package services

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/lightmyfireadmin/plombipro-app/internal/invoiceparse"
	"github.com/lightmyfireadmin/plombipro-app/internal/ocr"
)

// IOCRService turns an uploaded invoice scan into an extracted record.
type IOCRService interface {
	ProcessInvoice(ctx context.Context, imageBase64 string) (*invoiceparse.Record, error)
}

type ocrService struct {
	provider     ocr.Provider
	maxDimension int
}

// NewOCRService creates a new OCRService.
func NewOCRService(provider ocr.Provider, maxDimension int) IOCRService {
	return &ocrService{provider: provider, maxDimension: maxDimension}
}

// ProcessInvoice reads the text layer of PDFs directly. Anything else goes
// through image preprocessing and the OCR provider.
func (s *ocrService) ProcessInvoice(ctx context.Context, imageBase64 string) (*invoiceparse.Record, error) {
	if strings.TrimSpace(imageBase64) == "" {
		return nil, inputError("Missing required parameter: image_base64")
	}
	data, err := decodeUpload(imageBase64)
	if err != nil {
		return nil, inputError("Invalid image_base64: not valid base64.")
	}

	text, err := s.extractText(ctx, data)
	if err != nil {
		if errors.Is(err, ocr.ErrNoText) {
			return nil, inputError(ocr.ErrNoText.Error())
		}
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, inputError(ocr.ErrNoText.Error())
	}

	record := invoiceparse.Extract(text)
	return &record, nil
}

func (s *ocrService) extractText(ctx context.Context, data []byte) (string, error) {
	if ocr.IsPDF(data) {
		text, err := ocr.PDFText(data)
		if err == nil && text != "" {
			return text, nil
		}
		if err != nil {
			log.Printf("OCR: PDF text layer unreadable, falling back to OCR: %v", err)
		}
		return s.provider.ExtractText(ctx, data, "application/pdf")
	}

	processed, err := ocr.Preprocess(data, s.maxDimension)
	if err != nil {
		log.Printf("OCR: preprocessing skipped: %v", err)
		return s.provider.ExtractText(ctx, data, http.DetectContentType(data))
	}
	return s.provider.ExtractText(ctx, processed, "image/jpeg")
}

// decodeUpload accepts plain base64 or a data URL.
func decodeUpload(value string) ([]byte, error) {
	if strings.HasPrefix(value, "data:") {
		if i := strings.Index(value, ","); i >= 0 {
			value = value[i+1:]
		}
	}
	value = strings.TrimSpace(value)
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(value, "="))
	}
	return data, nil
}
