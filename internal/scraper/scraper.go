package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/lightmyfireadmin/plombipro-app/internal/models"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Scraper fetches supplier pages politely, one request at a time.
type Scraper struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a scraper issuing at most one request per interval.
func New(timeout, interval time.Duration) *Scraper {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// ScrapeSite walks every category of the site. A failing category is logged
// and skipped; an error is returned only when no category could be read.
func (s *Scraper) ScrapeSite(ctx context.Context, site Site) ([]models.Product, error) {
	var all []models.Product
	var lastErr error
	fetched := 0
	for _, cat := range site.Categories {
		products, err := s.ScrapeCategory(ctx, site, cat)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			log.Printf("Scraper: %s category %q failed: %v", site.Source, cat.Name, err)
			lastErr = err
			continue
		}
		fetched++
		all = append(all, products...)
	}
	if fetched == 0 && lastErr != nil {
		return nil, lastErr
	}
	return all, nil
}

// ScrapeCategory fetches and parses one listing page.
func (s *Scraper) ScrapeCategory(ctx context.Context, site Site, cat Category) ([]models.Product, error) {
	pageURL, err := resolve(site.BaseURL, cat.Path)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	products, skipped, err := ParseProducts(resp.Body, site, cat.Name)
	if err != nil {
		return nil, err
	}
	log.Printf("Scraper: %s %s: %d products parsed, %d cards skipped", site.Source, pageURL, len(products), skipped)
	return products, nil
}

// ParseProducts extracts products from a listing page. Cards without a name
// or a readable price are skipped and counted.
func ParseProducts(r io.Reader, site Site, category string) ([]models.Product, int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var cards *goquery.Selection
	for _, sel := range site.CardSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			cards = found
			break
		}
	}
	if cards == nil {
		return []models.Product{}, 0, nil
	}

	products := []models.Product{}
	skipped := 0
	cards.Each(func(_ int, card *goquery.Selection) {
		name := firstText(card, site.NameSelectors)
		price, ok := ParsePrice(firstText(card, site.PriceSelectors))
		if name == "" || !ok {
			skipped++
			return
		}
		ref := firstText(card, site.RefSelectors)
		if ref == "" {
			ref = name
		}

		p := models.Product{
			Source:         site.Source,
			Reference:      ref,
			Name:           name,
			Category:       category,
			SellingPriceHT: price,
		}
		if site.Margin > 0 {
			p.PurchasePriceHT = price
			p.SellingPriceHT = math.Round(price*(1+site.Margin)*100) / 100
		}
		products = append(products, p)
	})
	return products, skipped, nil
}

func firstText(card *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if found := card.Find(sel).First(); found.Length() > 0 {
			return strings.TrimSpace(found.Text())
		}
	}
	return ""
}

var priceNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParsePrice reads a French formatted price such as "1 234,56 €".
func ParsePrice(text string) (float64, bool) {
	cleaned := strings.NewReplacer("€", "", " ", "", "\u00a0", "", "\u202f", "", ",", ".").Replace(text)
	match := priceNumber.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func resolve(base, path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid category path %q: %w", path, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	return b.ResolveReference(ref).String(), nil
}
