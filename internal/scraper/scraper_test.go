package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightmyfireadmin/plombipro-app/internal/models"
)

const pointPPage = `<html><body>
<div class="product-item">
  <span class="product-title"> Coude PVC 90° </span>
  <span class="product-price">2,45 €</span>
  <span class="product-reference">PP-1001</span>
</div>
<div class="product-item">
  <span class="product-title">Manchon cuivre</span>
  <span class="product-price">1 234,50 €</span>
  <span class="product-reference">PP-1002</span>
</div>
<div class="product-item">
  <span class="product-title">Sans prix</span>
  <span class="product-price">Sur devis</span>
</div>
<div class="product-item">
  <span class="product-price">3,00 €</span>
</div>
</body></html>`

func TestParseProducts_PointP(t *testing.T) {
	products, skipped, err := ParseProducts(strings.NewReader(pointPPage), PointP("https://www.pointp.fr/c/x"), "")

	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, products, 2)
	assert.Equal(t, models.Product{Source: "pointp", Reference: "PP-1001", Name: "Coude PVC 90°", SellingPriceHT: 2.45}, products[0])
	assert.Equal(t, 1234.5, products[1].SellingPriceHT)
}

func TestParseProducts_CedeoFallbackSelectorsAndMargin(t *testing.T) {
	page := `<ul>
<li class="product"><h3 class="designation">Radiateur acier</h3><span class="prix">100,00 €</span><span class="code-article">CD-9</span></li>
<li class="product"><h3 class="designation">Vanne 1/4 tour</h3><span class="prix">9,99</span></li>
</ul>`

	products, skipped, err := ParseProducts(strings.NewReader(page), Cedeo("https://www.cedeo.fr"), "Radiateurs")

	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, products, 2)
	assert.Equal(t, "CD-9", products[0].Reference)
	assert.Equal(t, "Radiateurs", products[0].Category)
	assert.Equal(t, 100.0, products[0].PurchasePriceHT)
	assert.Equal(t, 130.0, products[0].SellingPriceHT)
	assert.Equal(t, "Vanne 1/4 tour", products[1].Reference)
	assert.Equal(t, 12.99, products[1].SellingPriceHT)
}

func TestParseProducts_NoCards(t *testing.T) {
	products, skipped, err := ParseProducts(strings.NewReader("<html></html>"), PointP(""), "")
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Zero(t, skipped)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2,45 €", 2.45, true},
		{"12.5", 12.5, true},
		{"1 234,56 €", 1234.56, true},
		{"À partir de 7,10 € HT", 7.10, true},
		{"Sur devis", 0, false},
		{"", 0, false},
		{"0,00 €", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.InDelta(t, tt.want, got, 0.0001, tt.in)
	}
}

func TestScraper_ScrapeSite(t *testing.T) {
	var userAgents []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgents = append(userAgents, r.UserAgent())
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(pointPPage))
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer server.Close()

	site := PointP("/ok")
	site.BaseURL = server.URL
	site.Categories = append(site.Categories, Category{Name: "blocked", Path: "/blocked"})

	products, err := New(5*time.Second, 0).ScrapeSite(context.Background(), site)

	require.NoError(t, err)
	assert.Len(t, products, 2)
	require.Len(t, userAgents, 2)
	assert.Contains(t, userAgents[0], "Mozilla/5.0")
}

func TestScraper_AllCategoriesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	site := PointP(server.URL + "/down")
	_, err := New(time.Second, 0).ScrapeSite(context.Background(), site)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
