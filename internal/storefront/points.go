package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/duynhne/storefront-gateway/internal/session"
)

// PointBalance is the member's current point total.
type PointBalance struct {
	Balance      int64 `json:"balance"`
	ExpiringSoon int64 `json:"expiringSoon,omitempty"`
}

// PointEvent is one entry in the point history.
type PointEvent struct {
	ID          int64  `json:"id"`
	Amount      int64  `json:"amount"` // negative for spend
	Reason      string `json:"reason,omitempty"`
	OccurredAt  string `json:"occurredAt,omitempty"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
	OrderNumber string `json:"orderNumber,omitempty"`
}

type pointHistoryPayload struct {
	Content []PointEvent `json:"content"`
	History []PointEvent `json:"history"`
}

func (p pointHistoryPayload) list() []PointEvent {
	if p.Content != nil {
		return p.Content
	}
	return p.History
}

// Points is the point client.
type Points struct {
	api   api
	creds session.Credentials
}

func NewPoints(api api, creds session.Credentials) *Points {
	return &Points{api: api, creds: creds}
}

// Balance fetches the member's point total.
func (p *Points) Balance(ctx context.Context) (*PointBalance, error) {
	var balance PointBalance
	if err := p.api.Get(ctx, "/users/points", nil, p.creds.AuthHeaders(), &balance); err != nil {
		return nil, fmt.Errorf("fetch point balance: %w", err)
	}
	return &balance, nil
}

// History fetches one page of point events.
func (p *Points) History(ctx context.Context, page, size int) ([]PointEvent, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	var payload pointHistoryPayload
	if err := p.api.Get(ctx, "/users/points/history", q, p.creds.AuthHeaders(), &payload); err != nil {
		return nil, fmt.Errorf("fetch point history: %w", err)
	}
	return payload.list(), nil
}
