// Package facturx builds Cross Industry Invoice (CII D16B) documents in the
// Factur-X profile from caller supplied invoice records.
package facturx

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one billed line.
type LineItem struct {
	Description string           `json:"description"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Quantity    int64            `json:"quantity"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

// Invoice is the invoice record as sent by the front-end. Totals are taken
// as given and never recomputed.
type Invoice struct {
	ID         string           `json:"id"`
	Number     string           `json:"number"`
	Date       string           `json:"date"` // YYYY-MM-DD
	ClientName string           `json:"client_name"`
	Items      []LineItem       `json:"items"`
	TotalHT    *decimal.Decimal `json:"total_ht"`
	TotalTVA   *decimal.Decimal `json:"total_tva"`
	TotalTTC   *decimal.Decimal `json:"total_ttc"`
	XMLURL     string           `json:"xml_url,omitempty"`
}

// Company is the seller.
type Company struct {
	CompanyName string `json:"company_name"`
	Siret       string `json:"siret,omitempty"`
}

// ValidationError reports the first missing required field.
type ValidationError struct {
	Record string
	Field  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Missing required field in %s data: %s", e.Record, e.Field)
}

// Validate checks the required fields of both records, in a fixed order.
func Validate(inv *Invoice, company *Company) error {
	checks := []struct {
		field   string
		present bool
	}{
		{"id", strings.TrimSpace(inv.ID) != ""},
		{"number", strings.TrimSpace(inv.Number) != ""},
		{"date", strings.TrimSpace(inv.Date) != ""},
		{"client_name", strings.TrimSpace(inv.ClientName) != ""},
		{"total_ttc", inv.TotalTTC != nil},
		{"total_ht", inv.TotalHT != nil},
		{"total_tva", inv.TotalTVA != nil},
		{"items", len(inv.Items) > 0},
	}
	for _, c := range checks {
		if !c.present {
			return &ValidationError{Record: "invoice", Field: c.field}
		}
	}

	for i, item := range inv.Items {
		if item.Quantity < 0 {
			return fmt.Errorf("invalid quantity for item %d: %d", i+1, item.Quantity)
		}
	}

	if strings.TrimSpace(company.CompanyName) == "" {
		return &ValidationError{Record: "company", Field: "company_name"}
	}
	return nil
}

// LineTotal is quantity times unit price.
func (li LineItem) LineTotal() decimal.Decimal {
	return decimal.NewFromInt(li.Quantity).Mul(li.UnitPrice)
}

var defaultTaxRate = decimal.NewFromInt(20)

// EffectiveTaxRate falls back to the standard French VAT rate when unset.
func (li LineItem) EffectiveTaxRate() decimal.Decimal {
	if li.TaxRate == nil {
		return defaultTaxRate
	}
	return *li.TaxRate
}

// ObjectPath is the storage key of the generated document. Regenerating an
// invoice overwrites the same object.
func ObjectPath(number string) string {
	return fmt.Sprintf("factur-x/%s.xml", number)
}
