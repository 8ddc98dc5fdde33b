package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ocrSpaceResponse is the parse/image response body. ErrorMessage is either
// a string or a list of strings depending on the failure.
type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText        string `json:"ParsedText"`
		FileParseExitCode int    `json:"FileParseExitCode"`
	} `json:"ParsedResults"`
	OCRExitCode           int             `json:"OCRExitCode"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// maxResponseBytes bounds the parse/image response body.
const maxResponseBytes = 4 << 20

type ocrSpaceProvider struct {
	endpoint   string
	apiKey     string
	language   string
	httpClient *http.Client
	maxBytes   int64
}

// NewOcrSpaceProvider creates a client for the OCR.space parse API.
func NewOcrSpaceProvider(endpoint, apiKey, language string, timeout time.Duration) Provider {
	return &ocrSpaceProvider{
		endpoint:   endpoint,
		apiKey:     apiKey,
		language:   language,
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxResponseBytes,
	}
}

func (p *ocrSpaceProvider) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := map[string]string{
		"base64Image": fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)),
		"language":    p.language,
	}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return "", fmt.Errorf("failed to build OCR request: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to build OCR request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create OCR request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("apikey", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Printf("Error calling OCR.space: %v", err)
		return "", fmt.Errorf("failed to contact OCR service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read OCR response: %w", err)
	}
	if int64(len(raw)) > p.maxBytes {
		return "", fmt.Errorf("OCR response exceeds %d bytes", p.maxBytes)
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("OCR.space returned non-OK status: %d - Body: %s", resp.StatusCode, string(raw))
		return "", fmt.Errorf("OCR service returned status %d", resp.StatusCode)
	}

	var parsed ocrSpaceResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse OCR response: %w", err)
	}
	if parsed.IsErroredOnProcessing {
		if msg := errorMessage(parsed.ErrorMessage); msg != "" {
			return "", fmt.Errorf("OCR processing failed: %s", msg)
		}
		return "", ErrNoText
	}
	if len(parsed.ParsedResults) == 0 {
		return "", ErrNoText
	}
	return parsed.ParsedResults[0].ParsedText, nil
}

func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	return ""
}
