package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/trading-wallet/internal/metrics"
	"github.com/baharkarakas/trading-wallet/internal/models"
)

//go:generate mockgen -source=payment_service.go -destination=mocks/mock_payment.go -package=mocks

// PaymentGateway is the external payment provider.
type PaymentGateway interface {
	Initialize(ctx context.Context, email string, amount decimal.Decimal, username string) (json.RawMessage, error)
	Verify(ctx context.Context, reference string) (models.PaymentVerification, error)
}

// ExternalCrediter credits a confirmed payment at most once per reference.
type ExternalCrediter interface {
	CreditExternal(ctx context.Context, username string, amount decimal.Decimal, paymentRef string) (models.User, bool, error)
}

type PaymentService struct {
	gw     PaymentGateway
	wallet ExternalCrediter
	log    *slog.Logger
}

func NewPaymentService(gw PaymentGateway, wallet ExternalCrediter, log *slog.Logger) *PaymentService {
	return &PaymentService{gw: gw, wallet: wallet, log: log}
}

// InitializeDeposit opens a provider payment session. No local state is
// written until the payment is verified.
func (s *PaymentService) InitializeDeposit(ctx context.Context, email string, amount decimal.Decimal, username string) (json.RawMessage, error) {
	email, username = strings.TrimSpace(email), strings.TrimSpace(username)
	if email == "" || username == "" || amount.IsZero() {
		return nil, invalid("Email, amount, and username required.")
	}
	// the provider charges whole minor units
	if !amount.IsPositive() || amount.Shift(2).Round(0).IsZero() {
		return nil, ErrInvalidAmount
	}
	raw, err := s.gw.Initialize(ctx, email, amount, username)
	if err != nil {
		s.log.Error("payment initialize failed", slog.String("username", username), slog.Any("err", err))
		return nil, err
	}
	return raw, nil
}

// VerifyDeposit confirms the payment with the provider and credits the
// wallet once per reference. It reports whether this call did the credit.
func (s *PaymentService) VerifyDeposit(ctx context.Context, reference string) (bool, error) {
	if strings.TrimSpace(reference) == "" {
		return false, invalid("reference is required")
	}
	v, err := s.gw.Verify(ctx, reference)
	if err != nil {
		metrics.PaymentVerificationsTotal.WithLabelValues("provider_error").Inc()
		s.log.Error("payment verify failed", slog.String("reference", reference), slog.Any("err", err))
		return false, err
	}
	if v.Status != models.PaymentStatusSuccess {
		metrics.PaymentVerificationsTotal.WithLabelValues("not_successful").Inc()
		s.log.Warn("payment not successful", slog.String("reference", reference), slog.String("status", v.Status))
		return false, ErrPaymentNotSuccessful
	}
	if v.Username == "" {
		metrics.PaymentVerificationsTotal.WithLabelValues("not_successful").Inc()
		return false, ErrPaymentMissingUsername
	}

	_, credited, err := s.wallet.CreditExternal(ctx, v.Username, v.Amount, reference)
	if err != nil {
		metrics.PaymentVerificationsTotal.WithLabelValues("error").Inc()
		return false, err
	}
	if credited {
		metrics.PaymentVerificationsTotal.WithLabelValues("credited").Inc()
	} else {
		metrics.PaymentVerificationsTotal.WithLabelValues("already_credited").Inc()
	}
	return credited, nil
}
