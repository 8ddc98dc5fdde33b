package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/lightmyfireadmin/plombipro-app/internal/config"
	"github.com/lightmyfireadmin/plombipro-app/internal/payments"
	"github.com/lightmyfireadmin/plombipro-app/internal/repository"
)

// AmountNotNumberMessage rejects a create-payment-intent body whose amount
// is missing or not a JSON number.
const AmountNotNumberMessage = "Amount must be a number."

// CreatePaymentIntentInput is the create-payment-intent request body.
// Amount is left untyped so a non-number is rejected with a clear message.
type CreatePaymentIntentInput struct {
	Amount    interface{} `json:"amount"`
	Currency  string      `json:"currency"`
	InvoiceID string      `json:"invoice_id"`
}

// ConnectAccountInput is the create-stripe-connect-account request body.
type ConnectAccountInput struct {
	UserID     string `json:"user_id"`
	ReturnURL  string `json:"return_url"`
	RefreshURL string `json:"refresh_url"`
}

// IPaymentService defines the payment relays.
type IPaymentService interface {
	CreatePaymentIntent(ctx context.Context, userID string, in *CreatePaymentIntentInput) (*payments.PaymentIntent, error)
	CreateConnectAccount(ctx context.Context, in *ConnectAccountInput) (string, error)
	Refund(ctx context.Context, paymentIntentID string) (string, error)
}

type paymentService struct {
	cfg      *config.Config
	gateway  payments.IPaymentGateway
	profiles repository.IProfileRepository
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(cfg *config.Config, gateway payments.IPaymentGateway, profiles repository.IProfileRepository) IPaymentService {
	return &paymentService{cfg: cfg, gateway: gateway, profiles: profiles}
}

// CreatePaymentIntent charges on behalf of the user's connected account and
// keeps the platform fee.
func (s *paymentService) CreatePaymentIntent(ctx context.Context, userID string, in *CreatePaymentIntentInput) (*payments.PaymentIntent, error) {
	amount, ok := in.Amount.(float64)
	if !ok {
		return nil, inputError(AmountNotNumberMessage)
	}
	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "eur"
	}

	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil || profile.StripeConnectID == "" {
		if err != nil {
			log.Printf("Payments: profile lookup for %s failed: %v", userID, err)
		}
		return nil, inputError("Stripe Connect account not linked for this user.")
	}

	cents := payments.ToCents(amount)
	return s.gateway.CreatePaymentIntent(ctx, payments.PaymentIntentRequest{
		AmountCents:      cents,
		Currency:         currency,
		FeeCents:         payments.ApplicationFee(cents, s.cfg.PlatformFeePercent),
		ConnectedAccount: profile.StripeConnectID,
		InvoiceID:        in.InvoiceID,
	})
}

// CreateConnectAccount opens an Express account, links it to the profile and
// returns the onboarding URL.
func (s *paymentService) CreateConnectAccount(ctx context.Context, in *ConnectAccountInput) (string, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return "", inputError("User ID is required.")
	}

	accountID, err := s.gateway.CreateConnectAccount(ctx, s.cfg.StripeConnectCountry)
	if err != nil {
		return "", err
	}
	if err := s.profiles.SetStripeConnectID(ctx, in.UserID, accountID); err != nil {
		log.Printf("Payments: account %s created but profile %s not updated: %v", accountID, in.UserID, err)
		return "", fmt.Errorf("Failed to update user profile: %w", err)
	}

	refreshURL := in.RefreshURL
	if refreshURL == "" {
		refreshURL = s.cfg.OnboardingFallbackURL
	}
	returnURL := in.ReturnURL
	if returnURL == "" {
		returnURL = s.cfg.OnboardingFallbackURL
	}
	return s.gateway.CreateAccountLink(ctx, accountID, refreshURL, returnURL)
}

func (s *paymentService) Refund(ctx context.Context, paymentIntentID string) (string, error) {
	if strings.TrimSpace(paymentIntentID) == "" {
		return "", inputError("Missing required parameter: payment_id")
	}
	return s.gateway.Refund(ctx, paymentIntentID)
}
