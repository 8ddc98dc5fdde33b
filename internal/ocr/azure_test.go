package ocr

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	result   computervision.OcrResult
	err      error
	gotBytes []byte
	gotLang  computervision.OcrLanguages
}

func (f *fakeRecognizer) RecognizePrintedTextInStream(_ context.Context, _ bool, image io.ReadCloser, language computervision.OcrLanguages) (computervision.OcrResult, error) {
	f.gotBytes, _ = io.ReadAll(image)
	f.gotLang = language
	return f.result, f.err
}

func words(texts ...string) *[]computervision.OcrWord {
	out := make([]computervision.OcrWord, 0, len(texts))
	for i := range texts {
		out = append(out, computervision.OcrWord{Text: &texts[i]})
	}
	return &out
}

func TestAzureProvider_JoinsLines(t *testing.T) {
	fake := &fakeRecognizer{result: computervision.OcrResult{
		Regions: &[]computervision.OcrRegion{
			{Lines: &[]computervision.OcrLine{
				{Words: words("Plomberie", "Martin", "SARL")},
				{Words: words("Total", "TTC:", "99,90")},
			}},
			{Lines: &[]computervision.OcrLine{
				{Words: nil},
				{Words: words("12/03/2024")},
			}},
		},
	}}
	p := &azureProvider{client: fake}

	text, err := p.ExtractText(context.Background(), []byte("jpeg"), "image/jpeg")

	require.NoError(t, err)
	assert.Equal(t, "Plomberie Martin SARL\nTotal TTC: 99,90\n12/03/2024", text)
	assert.Equal(t, []byte("jpeg"), fake.gotBytes)
	assert.Equal(t, computervision.OcrLanguagesFr, fake.gotLang)
}

func TestAzureProvider_NoRegions(t *testing.T) {
	p := &azureProvider{client: &fakeRecognizer{}}
	_, err := p.ExtractText(context.Background(), []byte("jpeg"), "")
	assert.ErrorIs(t, err, ErrNoText)
}

func TestAzureProvider_ClientError(t *testing.T) {
	p := &azureProvider{client: &fakeRecognizer{err: errors.New("quota exceeded")}}
	_, err := p.ExtractText(context.Background(), []byte("jpeg"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
