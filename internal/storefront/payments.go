package storefront

import (
	"context"
	"fmt"
	"net/url"

	"github.com/duynhne/storefront-gateway/internal/session"
)

// Payment is the backend's view of one payment.
type Payment struct {
	PaymentKey  string `json:"paymentKey"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	Method      string `json:"method,omitempty"`
	Amount      int64  `json:"amount"`
	ApprovedAt  string `json:"approvedAt,omitempty"`
}

// PaymentConfirmation finalizes a PG-authorized payment.
type PaymentConfirmation struct {
	PaymentKey  string `json:"paymentKey"`
	OrderNumber string `json:"orderId"`
	Amount      int64  `json:"amount"`
}

// Payments is the payment client. The gateway only relays; the payment
// provider and backend own all money movement.
type Payments struct {
	api   api
	creds session.Credentials
}

func NewPayments(api api, creds session.Credentials) *Payments {
	return &Payments{api: api, creds: creds}
}

// Confirm finalizes an authorized payment.
func (p *Payments) Confirm(ctx context.Context, confirmation PaymentConfirmation) (*Payment, error) {
	var payment Payment
	if err := p.api.Post(ctx, "/payments/confirm", confirmation, p.creds.AuthHeaders(), &payment); err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}
	return &payment, nil
}

// Get fetches one payment by its provider key.
func (p *Payments) Get(ctx context.Context, paymentKey string) (*Payment, error) {
	var payment Payment
	endpoint := "/payments/" + url.PathEscape(paymentKey)
	if err := p.api.Get(ctx, endpoint, nil, p.creds.AuthHeaders(), &payment); err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &payment, nil
}

// ForOrder fetches the payment attached to an order.
func (p *Payments) ForOrder(ctx context.Context, orderNumber string) (*Payment, error) {
	var payment Payment
	endpoint := "/payments/orders/" + url.PathEscape(orderNumber)
	if err := p.api.Get(ctx, endpoint, nil, p.creds.AuthHeaders(), &payment); err != nil {
		return nil, fmt.Errorf("get payment for order %s: %w", orderNumber, err)
	}
	return &payment, nil
}

// Cancel voids a payment.
func (p *Payments) Cancel(ctx context.Context, paymentKey, reason string) error {
	body := map[string]string{"cancelReason": reason}
	endpoint := "/payments/" + url.PathEscape(paymentKey) + "/cancel"
	if err := p.api.Post(ctx, endpoint, body, p.creds.AuthHeaders(), nil); err != nil {
		return fmt.Errorf("cancel payment: %w", err)
	}
	return nil
}
