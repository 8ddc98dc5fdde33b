// Package invoiceparse pulls invoice header fields out of raw OCR text.
package invoiceparse

import (
	"regexp"
	"strconv"
	"strings"
)

// SupplierNotFound is reported when no supplier line could be identified.
const SupplierNotFound = "not found"

// supplierScanLines bounds the keyword search to the top of the document.
const supplierScanLines = 15

var supplierKeywords = []string{"SARL", "SAS", "Fournisseur", "EURL", "SA", "Ltd", "Inc", "Plomberie", "Sanitaire"}

// Item is a purchased line. Line item extraction is not performed, so
// Record.Items is always empty.
type Item struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Record is the result of a single extraction.
type Record struct {
	Supplier  string  `json:"supplier"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
	Items     []Item  `json:"items"`
	RawText   string  `json:"rawText"`
	Siret     string  `json:"siret,omitempty"`
	VatNumber string  `json:"vat_number,omitempty"`
}

// matcher captures one field value from the whole text.
type matcher struct {
	pattern *regexp.Regexp
	group   int
}

// OCR output and French typography put no-break spaces (U+00A0, U+202F)
// before ':' and '€', so separators use the Unicode space class as well.
var amountMatchers = []matcher{
	{regexp.MustCompile(`(?:TOTAL|Total|MONTANT|Montant|À payer|à payer)[\s\p{Zs}:]*([0-9]+[.,][0-9]{2})`), 1},
	{regexp.MustCompile(`([0-9]+[.,][0-9]{2})[\s\p{Zs}]*(?:€|EUR)`), 1},
}

var dateMatchers = []matcher{
	{regexp.MustCompile(`(?:Date|DATE)[\s\p{Zs}:]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`), 1},
	{regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`), 1},
}

var siretMatchers = []matcher{
	{regexp.MustCompile(`\b\d{3}[\s\p{Zs}]?\d{3}[\s\p{Zs}]?\d{3}[\s\p{Zs}]?\d{5}\b`), 0},
}

var vatMatchers = []matcher{
	{regexp.MustCompile(`FR[\s\p{Zs}]?\d{2}[\s\p{Zs}]?\d{9}`), 0},
}

// firstMatch returns the capture of the first matcher that hits.
func firstMatch(text string, matchers []matcher) (string, bool) {
	for _, m := range matchers {
		if sub := m.pattern.FindStringSubmatch(text); sub != nil {
			return sub[m.group], true
		}
	}
	return "", false
}

// Extract derives a Record from OCR text. It never fails: fields that
// cannot be found keep their defaults.
func Extract(text string) Record {
	rec := Record{
		Supplier: SupplierNotFound,
		Items:    []Item{},
		RawText:  text,
	}

	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	rec.Supplier = findSupplier(lines)

	if raw, ok := firstMatch(text, amountMatchers); ok {
		if v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64); err == nil {
			rec.Amount = v
		}
	}

	if raw, ok := firstMatch(text, dateMatchers); ok {
		rec.Date = raw
	}

	if raw, ok := firstMatch(text, siretMatchers); ok {
		rec.Siret = stripSpaces(raw)
	}
	if raw, ok := firstMatch(text, vatMatchers); ok {
		rec.VatNumber = stripSpaces(raw)
	}

	return rec
}

func findSupplier(lines []string) string {
	if len(lines) == 0 {
		return SupplierNotFound
	}

	limit := len(lines)
	if limit > supplierScanLines {
		limit = supplierScanLines
	}
	for _, line := range lines[:limit] {
		upper := strings.ToUpper(line)
		for _, kw := range supplierKeywords {
			if strings.Contains(upper, strings.ToUpper(kw)) {
				return strings.TrimSpace(line)
			}
		}
	}

	return strings.TrimSpace(lines[0])
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
