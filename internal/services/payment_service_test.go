package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lightmyfireadmin/plombipro-app/internal/config"
	"github.com/lightmyfireadmin/plombipro-app/internal/models"
	"github.com/lightmyfireadmin/plombipro-app/internal/payments"
	"github.com/lightmyfireadmin/plombipro-app/internal/repository"
)

func paymentConfig() *config.Config {
	return &config.Config{
		PlatformFeePercent:    2,
		StripeConnectCountry:  "FR",
		OnboardingFallbackURL: "https://x.supabase.co/auth/v1/callback",
	}
}

func TestPaymentService_CreatePaymentIntent(t *testing.T) {
	gateway := new(mockPaymentGateway)
	profiles := new(mockProfileRepository)
	profiles.On("FindByID", mock.Anything, "user-1").Return(&models.Profile{ID: "user-1", StripeConnectID: "acct_1"}, nil)
	gateway.On("CreatePaymentIntent", mock.Anything, payments.PaymentIntentRequest{
		AmountCents: 12345, Currency: "eur", FeeCents: 247, ConnectedAccount: "acct_1", InvoiceID: "inv-9",
	}).Return(&payments.PaymentIntent{ID: "pi_1", ClientSecret: "secret"}, nil)

	svc := NewPaymentService(paymentConfig(), gateway, profiles)
	pi, err := svc.CreatePaymentIntent(context.Background(), "user-1", &CreatePaymentIntentInput{Amount: 123.45, InvoiceID: "inv-9"})

	require.NoError(t, err)
	assert.Equal(t, "pi_1", pi.ID)
	gateway.AssertExpectations(t)
}

func TestPaymentService_CreatePaymentIntent_Errors(t *testing.T) {
	tests := []struct {
		name    string
		amount  interface{}
		profile *models.Profile
		findErr error
		want    string
	}{
		{"amount is a string", "12.00", nil, nil, "Amount must be a number."},
		{"amount missing", nil, nil, nil, "Amount must be a number."},
		{"no profile", 10.0, nil, repository.ErrNotFound, "Stripe Connect account not linked for this user."},
		{"not linked", 10.0, &models.Profile{ID: "user-1"}, nil, "Stripe Connect account not linked for this user."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := new(mockPaymentGateway)
			profiles := new(mockProfileRepository)
			profiles.On("FindByID", mock.Anything, "user-1").Return(tt.profile, tt.findErr).Maybe()

			_, err := NewPaymentService(paymentConfig(), gateway, profiles).
				CreatePaymentIntent(context.Background(), "user-1", &CreatePaymentIntentInput{Amount: tt.amount})

			assert.EqualError(t, err, tt.want)
			gateway.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentService_CreateConnectAccount(t *testing.T) {
	gateway := new(mockPaymentGateway)
	profiles := new(mockProfileRepository)
	gateway.On("CreateConnectAccount", mock.Anything, "FR").Return("acct_new", nil)
	profiles.On("SetStripeConnectID", mock.Anything, "user-1", "acct_new").Return(nil)
	gateway.On("CreateAccountLink", mock.Anything, "acct_new", "https://x.supabase.co/auth/v1/callback", "https://app/done").
		Return("https://connect.stripe.com/setup/x", nil)

	url, err := NewPaymentService(paymentConfig(), gateway, profiles).CreateConnectAccount(context.Background(), &ConnectAccountInput{
		UserID: "user-1", ReturnURL: "https://app/done",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://connect.stripe.com/setup/x", url)
	gateway.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestPaymentService_CreateConnectAccount_Errors(t *testing.T) {
	t.Run("missing user", func(t *testing.T) {
		_, err := NewPaymentService(paymentConfig(), new(mockPaymentGateway), new(mockProfileRepository)).
			CreateConnectAccount(context.Background(), &ConnectAccountInput{})
		assert.EqualError(t, err, "User ID is required.")
	})

	t.Run("profile update fails", func(t *testing.T) {
		gateway := new(mockPaymentGateway)
		profiles := new(mockProfileRepository)
		gateway.On("CreateConnectAccount", mock.Anything, "FR").Return("acct_new", nil)
		profiles.On("SetStripeConnectID", mock.Anything, "user-1", "acct_new").Return(repository.ErrNotFound)

		_, err := NewPaymentService(paymentConfig(), gateway, profiles).
			CreateConnectAccount(context.Background(), &ConnectAccountInput{UserID: "user-1"})

		assert.EqualError(t, err, "Failed to update user profile: record not found")
		gateway.AssertNotCalled(t, "CreateAccountLink", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPaymentService_Refund(t *testing.T) {
	gateway := new(mockPaymentGateway)
	gateway.On("Refund", mock.Anything, "pi_1").Return("re_1", nil)
	svc := NewPaymentService(paymentConfig(), gateway, new(mockProfileRepository))

	id, err := svc.Refund(context.Background(), "pi_1")
	require.NoError(t, err)
	assert.Equal(t, "re_1", id)

	_, err = svc.Refund(context.Background(), "")
	assert.EqualError(t, err, "Missing required parameter: payment_id")

	gateway.On("Refund", mock.Anything, "pi_bad").Return("", errors.New("charge already refunded"))
	_, err = svc.Refund(context.Background(), "pi_bad")
	assert.EqualError(t, err, "charge already refunded")
}
