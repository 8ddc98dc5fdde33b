// Package scraper reads supplier catalogue pages into product rows.
package scraper

import (
	"strings"

	"github.com/lightmyfireadmin/plombipro-app/internal/models"
)

// Category is one listing page of a supplier site.
type Category struct {
	Name string
	Path string // absolute URL or path relative to the site base URL
}

// Site describes where product cards live on a supplier site. Selector lists
// are tried in order and the first one that matches wins.
type Site struct {
	Source         string
	BaseURL        string
	Categories     []Category
	CardSelectors  []string
	NameSelectors  []string
	PriceSelectors []string
	RefSelectors   []string
	// Margin is applied to the listed price to get the selling price.
	// Zero means the listed price is already the selling price.
	Margin float64
}

// PointP scrapes a single configured category page.
func PointP(categoryURL string) Site {
	return Site{
		Source:         models.ProductSourcePointP,
		BaseURL:        "https://www.pointp.fr",
		Categories:     []Category{{Name: "", Path: categoryURL}},
		CardSelectors:  []string{".product-item"},
		NameSelectors:  []string{".product-title"},
		PriceSelectors: []string{".product-price"},
		RefSelectors:   []string{".product-reference"},
	}
}

// Cedeo scrapes the plumbing and heating categories with a 30% margin on
// the trade price.
func Cedeo(baseURL string) Site {
	return Site{
		Source:  models.ProductSourceCedeo,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Categories: []Category{
			{Name: "Tuyauterie", Path: "/c/plomberie/tuyauterie/p/10_1"},
			{Name: "Raccords", Path: "/c/plomberie/raccords/p/10_2"},
			{Name: "Robinetterie", Path: "/c/plomberie/robinetterie/p/10_3"},
			{Name: "Sanitaire", Path: "/c/plomberie/sanitaire/p/10_4"},
			{Name: "Plancher chauffant", Path: "/c/plomberie/plancher-chauffant-rafraichissant-et-accessoires/p/10_5"},
			{Name: "Évacuation", Path: "/c/plomberie/evacuation/p/10_6"},
			{Name: "Chauffage", Path: "/c/chauffage/p/11_1"},
			{Name: "Radiateurs", Path: "/c/chauffage/radiateurs/p/11_2"},
			{Name: "Chaudières", Path: "/c/chauffage/chaudieres/p/11_3"},
			{Name: "Accessoires plomberie", Path: "/c/plomberie/accessoires/p/10_7"},
		},
		CardSelectors:  []string{".product-item", ".product-card", ".product", "article.product", `[itemtype*="Product"]`, ".produit", ".item-produit", "li.product"},
		NameSelectors:  []string{".product-title", ".product-name", "h2.product", "h3.product", `[itemprop="name"]`, ".titre-produit", ".libelle", ".designation"},
		PriceSelectors: []string{".product-price", ".price", `[itemprop="price"]`, ".prix", ".tarif", ".price-value", ".montant"},
		RefSelectors:   []string{".product-reference", ".product-ref", ".reference", `[itemprop="sku"]`, ".ref", ".code-article"},
		Margin:         0.30,
	}
}
