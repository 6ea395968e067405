package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/duynhne/storefront-gateway/internal/session"
)

// OrderItem is one line of a placed order.
type OrderItem struct {
	ProductID int64  `json:"productId"`
	VariantID int64  `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name,omitempty"`
	Price     int64  `json:"price,omitempty"`
}

// Order is a placed order as the backend reports it.
type Order struct {
	ID          int64       `json:"id"`
	OrderNumber string      `json:"orderNumber"`
	Status      string      `json:"status"`
	TotalAmount int64       `json:"totalAmount"`
	OrderedAt   string      `json:"orderedAt,omitempty"`
	Items       []OrderItem `json:"items,omitempty"`
}

// OrderInput creates an order from the current cart selection.
type OrderInput struct {
	CartItemIDs  []int64 `json:"cartItemIds,omitempty"`
	AddressID    int64   `json:"addressId,omitempty"`
	CouponID     int64   `json:"couponId,omitempty"`
	UsePoints    int64   `json:"usePoints,omitempty"`
	OrdererName  string  `json:"ordererName,omitempty"`
	OrdererPhone string  `json:"ordererPhone,omitempty"`
	OrdererEmail string  `json:"ordererEmail,omitempty"`
}

// GuestOrderQuery identifies a guest order for lookup and cancellation.
type GuestOrderQuery struct {
	OrderNumber string `json:"orderNumber"`
	OrdererName string `json:"ordererName,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Orders is the order client.
type Orders struct {
	api   api
	creds session.Credentials
}

func NewOrders(api api, creds session.Credentials) *Orders {
	return &Orders{api: api, creds: creds}
}

// Create places an order.
func (o *Orders) Create(ctx context.Context, input OrderInput) (*Order, error) {
	var order Order
	if err := o.api.Post(ctx, "/orders", input, o.creds.AuthHeaders(), &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// Get fetches one order by id.
func (o *Orders) Get(ctx context.Context, orderID int64) (*Order, error) {
	var order Order
	endpoint := "/orders/" + strconv.FormatInt(orderID, 10)
	if err := o.api.Get(ctx, endpoint, nil, o.creds.AuthHeaders(), &order); err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	return &order, nil
}

// GetByNumber fetches one order by its human-facing number.
func (o *Orders) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	var order Order
	endpoint := "/orders/number/" + url.PathEscape(orderNumber)
	if err := o.api.Get(ctx, endpoint, nil, o.creds.AuthHeaders(), &order); err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderNumber, err)
	}
	return &order, nil
}

// Cancel cancels a member order.
func (o *Orders) Cancel(ctx context.Context, orderNumber string, reason string) error {
	body := map[string]string{"reason": reason}
	endpoint := "/orders/" + url.PathEscape(orderNumber) + "/cancel"
	if err := o.api.Post(ctx, endpoint, body, o.creds.AuthHeaders(), nil); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderNumber, err)
	}
	return nil
}

// GuestLookup fetches a guest order by number plus orderer identity.
func (o *Orders) GuestLookup(ctx context.Context, query GuestOrderQuery) (*Order, error) {
	var order Order
	if err := o.api.Post(ctx, "/orders/guest/lookup", query, nil, &order); err != nil {
		return nil, fmt.Errorf("guest order lookup: %w", err)
	}
	return &order, nil
}

// GuestCancel cancels a guest order.
func (o *Orders) GuestCancel(ctx context.Context, query GuestOrderQuery) error {
	if err := o.api.Post(ctx, "/orders/guest/cancel", query, nil, nil); err != nil {
		return fmt.Errorf("guest order cancel: %w", err)
	}
	return nil
}
