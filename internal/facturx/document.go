package facturx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	nsRsm = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	nsRam = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	nsUdt = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"
	nsXsi = "http://www.w3.org/2001/XMLSchema-instance"

	// GuidelineID identifies the Factur-X EXTENDED profile.
	GuidelineID = "urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:extended"

	typeCodeCommercialInvoice = "380"
	dateFormatCode            = "102" // YYYYMMDD
	currencyEUR               = "EUR"
	unitCodeOne               = "C62"
	taxTypeVAT                = "VAT"
	taxCategoryStandard       = "S"
)

type crossIndustryInvoice struct {
	XMLName     xml.Name          `xml:"rsm:CrossIndustryInvoice"`
	XmlnsRsm    string            `xml:"xmlns:rsm,attr"`
	XmlnsRam    string            `xml:"xmlns:ram,attr"`
	XmlnsUdt    string            `xml:"xmlns:udt,attr"`
	XmlnsXsi    string            `xml:"xmlns:xsi,attr"`
	Context     documentContext   `xml:"rsm:ExchangedDocumentContext"`
	Document    exchangedDocument `xml:"rsm:ExchangedDocument"`
	Transaction tradeTransaction  `xml:"rsm:SupplyChainTradeTransaction"`
}

type documentContext struct {
	Guideline identifier `xml:"ram:GuidelineSpecifiedDocumentContextParameter"`
}

type identifier struct {
	ID string `xml:"ram:ID"`
}

type exchangedDocument struct {
	ID            string   `xml:"ram:ID"`
	TypeCode      string   `xml:"ram:TypeCode"`
	IssueDateTime dateTime `xml:"ram:IssueDateTime"`
}

type dateTime struct {
	Value formatted `xml:"udt:DateTimeString"`
}

type formatted struct {
	Format string `xml:"format,attr"`
	Value  string `xml:",chardata"`
}

type tradeTransaction struct {
	LineItems  []tradeLineItem  `xml:"ram:IncludedSupplyChainTradeLineItem"`
	Settlement headerSettlement `xml:"ram:ApplicableHeaderTradeSettlement"`
}

type tradeLineItem struct {
	Document   lineDocument   `xml:"ram:AssociatedDocumentLineDocument"`
	Product    tradeProduct   `xml:"ram:SpecifiedTradeProduct"`
	Agreement  lineAgreement  `xml:"ram:SpecifiedLineTradeAgreement"`
	Delivery   lineDelivery   `xml:"ram:SpecifiedLineTradeDelivery"`
	Settlement lineSettlement `xml:"ram:SpecifiedLineTradeSettlement"`
}

type lineDocument struct {
	LineID string `xml:"ram:LineID"`
}

type tradeProduct struct {
	Name string `xml:"ram:Name"`
}

type lineAgreement struct {
	NetPrice tradePrice `xml:"ram:NetPriceProductTradePrice"`
}

type tradePrice struct {
	ChargeAmount string `xml:"ram:ChargeAmount"`
}

type lineDelivery struct {
	BilledQuantity quantity `xml:"ram:BilledQuantity"`
}

type quantity struct {
	UnitCode string `xml:"unitCode,attr"`
	Value    string `xml:",chardata"`
}

type lineSettlement struct {
	Tax       tradeTax      `xml:"ram:ApplicableTradeTax"`
	Summation lineSummation `xml:"ram:SpecifiedTradeSettlementLineMonetarySummation"`
}

type tradeTax struct {
	TypeCode              string `xml:"ram:TypeCode"`
	CategoryCode          string `xml:"ram:CategoryCode"`
	RateApplicablePercent string `xml:"ram:RateApplicablePercent"`
}

type lineSummation struct {
	LineTotalAmount string `xml:"ram:LineTotalAmount"`
}

type headerSettlement struct {
	InvoiceCurrencyCode string          `xml:"ram:InvoiceCurrencyCode"`
	Buyer               tradeParty      `xml:"ram:BuyerTradeParty"`
	Seller              tradeParty      `xml:"ram:SellerTradeParty"`
	Summation           headerSummation `xml:"ram:SpecifiedTradeSettlementHeaderMonetarySummation"`
}

type tradeParty struct {
	Name              string      `xml:"ram:Name"`
	LegalOrganization *identifier `xml:"ram:SpecifiedLegalOrganization,omitempty"`
}

type headerSummation struct {
	LineTotalAmount     string   `xml:"ram:LineTotalAmount"`
	TaxBasisTotalAmount string   `xml:"ram:TaxBasisTotalAmount"`
	TaxTotalAmount      currency `xml:"ram:TaxTotalAmount"`
	GrandTotalAmount    string   `xml:"ram:GrandTotalAmount"`
	DuePaymentAmount    string   `xml:"ram:DuePaymentAmount"`
}

type currency struct {
	CurrencyID string `xml:"currencyID,attr"`
	Value      string `xml:",chardata"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Build validates the records and renders the pretty-printed document.
func Build(inv *Invoice, company *Company) ([]byte, error) {
	if inv == nil || company == nil {
		return nil, fmt.Errorf("missing invoice or company data")
	}
	if err := Validate(inv, company); err != nil {
		return nil, err
	}

	doc := crossIndustryInvoice{
		XmlnsRsm: nsRsm,
		XmlnsRam: nsRam,
		XmlnsUdt: nsUdt,
		XmlnsXsi: nsXsi,
		Context: documentContext{
			Guideline: identifier{ID: GuidelineID},
		},
		Document: exchangedDocument{
			ID:       inv.Number,
			TypeCode: typeCodeCommercialInvoice,
			IssueDateTime: dateTime{
				Value: formatted{Format: dateFormatCode, Value: strings.ReplaceAll(inv.Date, "-", "")},
			},
		},
	}

	for i, item := range inv.Items {
		doc.Transaction.LineItems = append(doc.Transaction.LineItems, tradeLineItem{
			Document:  lineDocument{LineID: strconv.Itoa(i + 1)},
			Product:   tradeProduct{Name: item.Description},
			Agreement: lineAgreement{NetPrice: tradePrice{ChargeAmount: money(item.UnitPrice)}},
			Delivery: lineDelivery{
				BilledQuantity: quantity{UnitCode: unitCodeOne, Value: strconv.FormatInt(item.Quantity, 10)},
			},
			Settlement: lineSettlement{
				Tax: tradeTax{
					TypeCode:              taxTypeVAT,
					CategoryCode:          taxCategoryStandard,
					RateApplicablePercent: money(item.EffectiveTaxRate()),
				},
				Summation: lineSummation{LineTotalAmount: money(item.LineTotal())},
			},
		})
	}

	seller := tradeParty{Name: company.CompanyName}
	if siret := strings.TrimSpace(company.Siret); siret != "" {
		seller.LegalOrganization = &identifier{ID: siret}
	}

	doc.Transaction.Settlement = headerSettlement{
		InvoiceCurrencyCode: currencyEUR,
		Buyer:               tradeParty{Name: inv.ClientName},
		Seller:              seller,
		Summation: headerSummation{
			LineTotalAmount:     money(*inv.TotalHT),
			TaxBasisTotalAmount: money(*inv.TotalHT),
			TaxTotalAmount:      currency{CurrencyID: currencyEUR, Value: money(*inv.TotalTVA)},
			GrandTotalAmount:    money(*inv.TotalTTC),
			DuePaymentAmount:    money(*inv.TotalTTC),
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal factur-x document: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
