// Package payments wraps the Stripe Connect calls used for invoice payments.
package payments

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// PaymentIntentRequest describes a destination charge on behalf of a
// connected account.
type PaymentIntentRequest struct {
	AmountCents      int64
	Currency         string
	FeeCents         int64
	ConnectedAccount string
	InvoiceID        string
}

// PaymentIntent is the part of the Stripe intent returned to the front-end.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// IPaymentGateway defines the payment provider operations.
type IPaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	CreateConnectAccount(ctx context.Context, country string) (string, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	Refund(ctx context.Context, paymentIntentID string) (string, error)
}

type stripeGateway struct {
	sc *client.API
}

// NewStripeGateway creates a gateway for the given secret key.
func NewStripeGateway(secretKey string) IPaymentGateway {
	return &stripeGateway{sc: client.New(secretKey, nil)}
}

// newStripeGatewayWithBackends is used by tests to point the client at a
// local server.
func newStripeGatewayWithBackends(secretKey string, backends *stripe.Backends) IPaymentGateway {
	return &stripeGateway{sc: client.New(secretKey, backends)}
}

// ToCents converts a decimal amount to the smallest currency unit.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ApplicationFee is the platform cut of a charge, rounded to the nearest cent.
func ApplicationFee(amountCents int64, feePercent float64) int64 {
	return int64(math.Round(float64(amountCents) * feePercent / 100))
}

func (g *stripeGateway) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(req.AmountCents),
		Currency:             stripe.String(req.Currency),
		ApplicationFeeAmount: stripe.Int64(req.FeeCents),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(req.ConnectedAccount),
		},
	}
	params.Context = ctx
	params.AddMetadata("invoice_id", req.InvoiceID)

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		log.Printf("Stripe: failed to create payment intent for invoice %s: %v", req.InvoiceID, err)
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *stripeGateway) CreateConnectAccount(ctx context.Context, country string) (string, error) {
	params := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Country: stripe.String(country),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
		BusinessType: stripe.String(string(stripe.AccountBusinessTypeIndividual)),
	}
	params.Context = ctx

	acct, err := g.sc.Accounts.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create connected account: %w", err)
	}
	return acct.ID, nil
}

func (g *stripeGateway) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}
	params.Context = ctx

	link, err := g.sc.AccountLinks.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create onboarding link: %w", err)
	}
	return link.URL, nil
}

func (g *stripeGateway) Refund(ctx context.Context, paymentIntentID string) (string, error) {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentIntentID)}
	params.Context = ctx

	r, err := g.sc.Refunds.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to refund payment: %w", err)
	}
	return r.ID, nil
}
