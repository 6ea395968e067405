package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/duynhne/storefront-gateway/internal/session"
)

// Coupon is one coupon as listed by the backend.
type Coupon struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	DiscountType   string `json:"discountType"` // "FIXED" or "RATE"
	DiscountValue  int64  `json:"discountValue"`
	MinOrderAmount int64  `json:"minOrderAmount,omitempty"`
	ExpiresAt      string `json:"expiresAt,omitempty"`
	Downloaded     bool   `json:"downloaded,omitempty"`
}

type couponPayload struct {
	Content []Coupon `json:"content"`
	Coupons []Coupon `json:"coupons"`
}

func (p couponPayload) list() []Coupon {
	if p.Content != nil {
		return p.Content
	}
	return p.Coupons
}

// Coupons is the coupon client.
type Coupons struct {
	api   api
	creds session.Credentials
}

func NewCoupons(api api, creds session.Credentials) *Coupons {
	return &Coupons{api: api, creds: creds}
}

// Available lists coupons open for download.
func (c *Coupons) Available(ctx context.Context) ([]Coupon, error) {
	var payload couponPayload
	if err := c.api.Get(ctx, "/coupons", nil, c.creds.AuthHeaders(), &payload); err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return payload.list(), nil
}

// Mine lists the member's downloaded coupons.
func (c *Coupons) Mine(ctx context.Context) ([]Coupon, error) {
	var payload couponPayload
	if err := c.api.Get(ctx, "/coupons/my", nil, c.creds.AuthHeaders(), &payload); err != nil {
		return nil, fmt.Errorf("list my coupons: %w", err)
	}
	return payload.list(), nil
}

// Applicable lists coupons usable for the given order amount.
func (c *Coupons) Applicable(ctx context.Context, orderAmount int64) ([]Coupon, error) {
	q := url.Values{}
	q.Set("orderAmount", strconv.FormatInt(orderAmount, 10))
	var payload couponPayload
	if err := c.api.Get(ctx, "/coupons/applicable", q, c.creds.AuthHeaders(), &payload); err != nil {
		return nil, fmt.Errorf("list applicable coupons: %w", err)
	}
	return payload.list(), nil
}

// Download claims a coupon for the member.
func (c *Coupons) Download(ctx context.Context, couponID int64) error {
	endpoint := fmt.Sprintf("/coupons/%d/download", couponID)
	if err := c.api.Post(ctx, endpoint, nil, c.creds.AuthHeaders(), nil); err != nil {
		return fmt.Errorf("download coupon %d: %w", couponID, err)
	}
	return nil
}
