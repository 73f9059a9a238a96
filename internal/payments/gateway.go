package payments

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"net/http"

	"wayfare/pkg/client"
	"wayfare/pkg/config"
	apperrors "wayfare/pkg/errors"
	"wayfare/pkg/logger"
)

// Order is the provider-side payment order a checkout charges against.
// Amount is in minor currency units.
type Order struct {
	ID       string         `json:"id"`
	Amount   int64          `json:"amount"`
	Currency string         `json:"currency"`
	Receipt  string         `json:"receipt"`
	Status   string         `json:"status"`
	Notes    map[string]any `json:"notes,omitempty"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string, notes map[string]any) (*Order, error)
}

type gateway struct {
	client *client.HttpClient
	keyID  string
	secret string
	log    *logger.Logger
}

func NewGateway(cfg *config.Config) Gateway {
	return &gateway{
		client: client.NewHttpClient(cfg.PaymentBaseURL),
		keyID:  cfg.PaymentKeyID,
		secret: cfg.PaymentKeySecret,
		log:    cfg.Log,
	}
}

// MinorUnits converts a decimal amount to the provider's minor-unit integer.
// Rounded, not truncated: 1500.5 becomes 150050, never 150049.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

type createOrderRequest struct {
	Amount   int64          `json:"amount"`
	Currency string         `json:"currency"`
	Receipt  string         `json:"receipt"`
	Notes    map[string]any `json:"notes,omitempty"`
}

type providerError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (g *gateway) CreateOrder(ctx context.Context, amount float64, currency, receipt string, notes map[string]any) (*Order, error) {
	if amount <= 0 {
		return nil, apperrors.InvalidInput("payment amount must be greater than 0")
	}

	req := createOrderRequest{
		Amount:   MinorUnits(amount),
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	}

	resp, err := g.client.POSTWithHeaders(ctx, "/v1/orders", req, map[string]string{
		"Authorization": g.basicAuth(),
	})
	if err != nil {
		return nil, apperrors.PaymentSetup("Failed to reach payment provider", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var provErr providerError
		if decodeErr := resp.DecodeJSON(&provErr); decodeErr == nil && provErr.Error.Description != "" {
			g.log.Error("Payment order creation rejected",
				"status", resp.StatusCode,
				"provider_code", provErr.Error.Code,
				"description", provErr.Error.Description,
			)
			return nil, apperrors.PaymentSetup("Payment provider rejected the order", fmt.Errorf("%s: %s", provErr.Error.Code, provErr.Error.Description))
		}
		return nil, apperrors.PaymentSetup("Payment provider rejected the order", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var order Order
	if err := resp.DecodeJSON(&order); err != nil {
		return nil, apperrors.PaymentSetup("Failed to decode payment order", err)
	}
	if order.ID == "" {
		return nil, apperrors.PaymentSetup("Payment provider returned an order without an id", nil)
	}

	g.log.Info("Payment order created",
		"order_id", order.ID,
		"amount", order.Amount,
		"currency", order.Currency,
		"receipt", receipt,
	)

	return &order, nil
}

func (g *gateway) basicAuth() string {
	credentials := base64.StdEncoding.EncodeToString([]byte(g.keyID + ":" + g.secret))
	return "Basic " + credentials
}
