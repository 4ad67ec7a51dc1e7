package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/trading-wallet/internal/models"
	"github.com/baharkarakas/trading-wallet/internal/services/mocks"
)

func newPaymentService(t *testing.T) (*PaymentService, *mocks.MockPaymentGateway, *mocks.MockExternalCrediter) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockPaymentGateway(ctrl)
	cr := mocks.NewMockExternalCrediter(ctrl)
	return NewPaymentService(gw, cr, testLogger), gw, cr
}

func TestInitializeDeposit(t *testing.T) {
	svc, gw, _ := newPaymentService(t)
	body := json.RawMessage(`{"status":true,"data":{"authorization_url":"https://checkout.paystack.com/x"}}`)

	gw.EXPECT().Initialize(gomock.Any(), "a@x.io", decEq("25.5"), "alice").Return(body, nil)

	raw, err := svc.InitializeDeposit(context.Background(), "a@x.io", decimal.RequireFromString("25.5"), "alice")
	require.NoError(t, err)
	assert.JSONEq(t, string(body), string(raw))
}

func TestInitializeDeposit_Validation(t *testing.T) {
	svc, _, _ := newPaymentService(t)
	ctx := context.Background()

	_, err := svc.InitializeDeposit(ctx, "", decimal.NewFromInt(1), "alice")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.InitializeDeposit(ctx, "a@x.io", decimal.Zero, "alice")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.InitializeDeposit(ctx, "a@x.io", decimal.NewFromInt(-3), "alice")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.InitializeDeposit(ctx, "a@x.io", decimal.NewFromInt(1), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestVerifyDeposit_CreditsOncePerReference(t *testing.T) {
	svc, gw, cr := newPaymentService(t)
	ok := models.PaymentVerification{Reference: "abc123", Status: models.PaymentStatusSuccess, Amount: decimal.NewFromInt(300), Username: "alice"}

	gw.EXPECT().Verify(gomock.Any(), "abc123").Return(ok, nil).Times(2)
	gomock.InOrder(
		cr.EXPECT().CreditExternal(gomock.Any(), "alice", decEq("300"), "abc123").Return(models.User{}, true, nil),
		cr.EXPECT().CreditExternal(gomock.Any(), "alice", decEq("300"), "abc123").Return(models.User{}, false, nil),
	)

	credited, err := svc.VerifyDeposit(context.Background(), "abc123")
	require.NoError(t, err)
	assert.True(t, credited)

	credited, err = svc.VerifyDeposit(context.Background(), "abc123")
	require.NoError(t, err)
	assert.False(t, credited)
}

func TestVerifyDeposit_NotSuccessful(t *testing.T) {
	svc, gw, _ := newPaymentService(t)

	gw.EXPECT().Verify(gomock.Any(), "abc123").
		Return(models.PaymentVerification{Reference: "abc123", Status: "abandoned", Username: "alice"}, nil)

	_, err := svc.VerifyDeposit(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrPaymentNotSuccessful)
	assert.ErrorIs(t, err, ErrFailedPrecondition)
}

func TestVerifyDeposit_MissingUsername(t *testing.T) {
	svc, gw, _ := newPaymentService(t)

	gw.EXPECT().Verify(gomock.Any(), "abc123").
		Return(models.PaymentVerification{Reference: "abc123", Status: models.PaymentStatusSuccess, Amount: decimal.NewFromInt(1)}, nil)

	_, err := svc.VerifyDeposit(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrFailedPrecondition)
}

func TestVerifyDeposit_ProviderError(t *testing.T) {
	svc, gw, _ := newPaymentService(t)
	boom := errors.New("paystack: unexpected status 503")

	gw.EXPECT().Verify(gomock.Any(), "abc123").Return(models.PaymentVerification{}, boom)

	_, err := svc.VerifyDeposit(context.Background(), "abc123")
	assert.ErrorIs(t, err, boom)
}

func TestVerifyDeposit_EmptyReference(t *testing.T) {
	svc, _, _ := newPaymentService(t)

	_, err := svc.VerifyDeposit(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestInitializeDeposit_RejectsSubMinorUnitAmounts(t *testing.T) {
	svc, gw, _ := newPaymentService(t)
	ctx := context.Background()

	for _, amt := range []string{"0.001", "0.004", "0.0049"} {
		_, err := svc.InitializeDeposit(ctx, "a@x.io", decimal.RequireFromString(amt), "alice")
		assert.ErrorIs(t, err, ErrInvalidAmount, amt)
	}

	gw.EXPECT().Initialize(gomock.Any(), "a@x.io", decEq("0.01"), "alice").Return(json.RawMessage(`{"status":true}`), nil)
	_, err := svc.InitializeDeposit(ctx, " a@x.io ", decimal.RequireFromString("0.01"), " alice")
	require.NoError(t, err)
}
