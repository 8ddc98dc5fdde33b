package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
)

// printedTextRecognizer is implemented by computervision.BaseClient.
type printedTextRecognizer interface {
	RecognizePrintedTextInStream(ctx context.Context, detectOrientation bool, image io.ReadCloser, language computervision.OcrLanguages) (computervision.OcrResult, error)
}

type azureProvider struct {
	client printedTextRecognizer
}

// NewAzureProvider creates a provider backed by Azure Computer Vision.
func NewAzureProvider(endpoint, apiKey string) Provider {
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)
	return &azureProvider{client: client}
}

func (p *azureProvider) ExtractText(ctx context.Context, data []byte, _ string) (string, error) {
	result, err := p.client.RecognizePrintedTextInStream(ctx, true, io.NopCloser(bytes.NewReader(data)), computervision.OcrLanguagesFr)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	text := joinOcrResult(result)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// joinOcrResult flattens regions into one line of text per recognised line.
func joinOcrResult(result computervision.OcrResult) string {
	if result.Regions == nil {
		return ""
	}
	var lines []string
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			var words []string
			for _, word := range *line.Words {
				if word.Text != nil {
					words = append(words, *word.Text)
				}
			}
			if len(words) > 0 {
				lines = append(lines, strings.Join(words, " "))
			}
		}
	}
	return strings.Join(lines, "\n")
}
