package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/google/uuid"
)

var ErrEmptyNonce = errors.New("payment nonce required")

// Gateway abstracts the third-party payment provider. Checkout only
// depends on this interface; provider SDK wiring lives behind it.
type Gateway interface {
	ClientToken(ctx context.Context) (string, error)
	Charge(ctx context.Context, nonce string, amount float64) (models.PaymentResult, error)
}

// SandboxGateway approves every charge with a synthetic transaction
// id. It stands in for the real provider in development and tests.
type SandboxGateway struct {
	merchantID string
	currency   string
}

func NewSandboxGateway(cfg *config.PaymentConfig) *SandboxGateway {
	return &SandboxGateway{merchantID: cfg.MerchantID, currency: cfg.Currency}
}

func (g *SandboxGateway) ClientToken(ctx context.Context) (string, error) {
	return fmt.Sprintf("sandbox-%s-%s", g.merchantID, uuid.New().String()), nil
}

func (g *SandboxGateway) Charge(ctx context.Context, nonce string, amount float64) (models.PaymentResult, error) {
	if nonce == "" {
		return models.PaymentResult{}, ErrEmptyNonce
	}
	if amount < 0 {
		return models.PaymentResult{}, fmt.Errorf("negative charge amount: %f", amount)
	}

	return models.PaymentResult{
		Success:       true,
		TransactionID: fmt.Sprintf("txn-%d-%s", time.Now().Unix(), uuid.New().String()[:8]),
		Amount:        amount,
		Message:       fmt.Sprintf("charged %.2f %s", amount, g.currency),
	}, nil
}
