package storefront

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/storefront-gateway/internal/backend"
	"github.com/duynhne/storefront-gateway/internal/session"
)

func guestCreds(id string) session.Credentials {
	h := http.Header{}
	h.Set(session.HeaderGuestSession, id)
	return session.StaticCredentials(h)
}

func memberCreds(token string) session.Credentials {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return session.StaticCredentials(h)
}

func TestCartFetchToleratesPayloadShapes(t *testing.T) {
	shapes := map[string]string{
		"items":     `{"success":true,"data":{"items":[{"id":1,"productId":42,"quantity":2}]}}`,
		"cartItems": `{"success":true,"data":{"cartItems":[{"id":1,"productId":42,"quantity":2}]}}`,
		"content":   `{"success":true,"data":{"content":[{"id":1,"productId":42,"quantity":2}]}}`,
		"bare":      `{"items":[{"id":1,"productId":42,"quantity":2}]}`,
	}
	for name, body := range shapes {
		t.Run(name, func(t *testing.T) {
			api := newFakeAPI()
			api.stub(http.MethodGet, "/cart", body)
			cart := NewCart(api, guestCreds("g-1"))

			items, err := cart.Fetch(context.Background())
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, int64(42), items[0].ProductID)
			assert.Equal(t, 2, items[0].Quantity)
		})
	}
}

func TestCartFetchEmpty(t *testing.T) {
	api := newFakeAPI()
	api.stub(http.MethodGet, "/cart", `{"success":true,"data":{}}`)
	cart := NewCart(api, guestCreds("g-1"))

	items, err := cart.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, 0, cart.Count())
}

func TestCartAddItemsSendsGuestHeader(t *testing.T) {
	api := newFakeAPI()
	api.stub(http.MethodPost, "/cart/items",
		`{"success":true,"data":{"items":[{"id":5,"productId":42,"quantity":1}]}}`)
	cart := NewCart(api, guestCreds("g-1"))

	require.NoError(t, cart.AddItems(context.Background(), CartItemInput{ProductID: 42, Quantity: 1}))

	calls := api.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "g-1", calls[0].Header.Get(session.HeaderGuestSession))
	assert.True(t, cart.Contains(42, 0))
	assert.Equal(t, 1, cart.Count())
}

func TestCartAddItemsRefetchesWhenListNotEchoed(t *testing.T) {
	api := newFakeAPI()
	api.stub(http.MethodPost, "/cart/items", `{"success":true,"data":null}`)
	api.stub(http.MethodGet, "/cart",
		`{"success":true,"data":{"items":[{"id":5,"productId":42,"quantity":1}]}}`)
	cart := NewCart(api, guestCreds("g-1"))

	require.NoError(t, cart.AddItems(context.Background(), CartItemInput{ProductID: 42, Quantity: 1}))

	assert.Equal(t, 1, api.callsTo(http.MethodGet, "/cart"))
	assert.True(t, cart.Contains(42, 0))
}

func TestCartUpdateQuantity(t *testing.T) {
	api := newFakeAPI()
	api.stub(http.MethodGet, "/cart",
		`{"success":true,"data":{"items":[{"id":5,"productId":42,"quantity":1}]}}`)
	cart := NewCart(api, memberCreds("tok"))
	_, err := cart.Fetch(context.Background())
	require.NoError(t, err)

	require.NoError(t, cart.UpdateQuantity(context.Background(), 5, 3))

	calls := api.recorded()
	last := calls[len(calls)-1]
	assert.Equal(t, "/cart/items/5", last.Endpoint)
	assert.Equal(t, http.MethodPatch, last.Method)
	assert.Equal(t, 3, cart.Items()[0].Quantity)
}

func TestCartRemoveItems(t *testing.T) {
	api := newFakeAPI()
	api.stub(http.MethodGet, "/cart",
		`{"success":true,"data":{"items":[{"id":5,"productId":42,"quantity":1},{"id":6,"productId":43,"quantity":2}]}}`)
	cart := NewCart(api, memberCreds("tok"))
	_, err := cart.Fetch(context.Background())
	require.NoError(t, err)

	require.NoError(t, cart.RemoveItems(context.Background(), 5))

	assert.Equal(t, 1, cart.Count())
	assert.False(t, cart.Contains(42, 0))
	assert.True(t, cart.Contains(43, 0))
}

func TestCartMergeAfterLogin(t *testing.T) {
	api := newFakeAPI()
	api.stub(http.MethodPost, "/cart/merge", `{"success":true,"data":null}`)
	api.stub(http.MethodGet, "/cart",
		`{"success":true,"data":{"items":[{"id":9,"productId":42,"quantity":1},{"id":10,"productId":77,"quantity":1}]}}`)
	cart := NewCart(api, memberCreds("tok"))

	require.NoError(t, cart.Merge(context.Background(), "guest-123"))

	// Exactly one merge call, carrying the guest id next to the member
	// credentials, then a re-fetch of the merged cart.
	assert.Equal(t, 1, api.callsTo(http.MethodPost, "/cart/merge"))
	assert.Equal(t, 1, api.callsTo(http.MethodGet, "/cart"))

	calls := api.recorded()
	merge := calls[0]
	assert.Equal(t, "guest-123", merge.Header.Get(session.HeaderGuestSession))
	assert.Equal(t, "Bearer tok", merge.Header.Get("Authorization"))

	assert.True(t, cart.Contains(42, 0))
	assert.True(t, cart.Contains(77, 0))
}

func TestCartMergeWithoutGuestIDJustFetches(t *testing.T) {
	api := newFakeAPI()
	api.stub(http.MethodGet, "/cart", `{"success":true,"data":{"items":[]}}`)
	cart := NewCart(api, memberCreds("tok"))

	require.NoError(t, cart.Merge(context.Background(), ""))

	assert.Equal(t, 0, api.callsTo(http.MethodPost, "/cart/merge"))
	assert.Equal(t, 1, api.callsTo(http.MethodGet, "/cart"))
}

func TestCartMergeFailureDoesNotBlockLogin(t *testing.T) {
	api := newFakeAPI()
	api.fail(http.MethodPost, "/cart/merge",
		&backend.APIError{StatusCode: http.StatusConflict, Code: "CART_001", Message: "merge conflict"})
	api.stub(http.MethodGet, "/cart",
		`{"success":true,"data":{"items":[{"id":1,"productId":7,"quantity":1}]}}`)
	cart := NewCart(api, memberCreds("tok"))

	require.NoError(t, cart.Merge(context.Background(), "guest-123"))

	assert.Equal(t, 1, api.callsTo(http.MethodGet, "/cart"), "member cart still loads after a failed merge")
	assert.True(t, cart.Contains(7, 0))
}

func TestCartContainsVariants(t *testing.T) {
	api := newFakeAPI()
	api.stub(http.MethodGet, "/cart",
		`{"success":true,"data":{"items":[{"id":1,"productId":42,"variantId":3,"quantity":1}]}}`)
	cart := NewCart(api, guestCreds("g-1"))
	_, err := cart.Fetch(context.Background())
	require.NoError(t, err)

	assert.True(t, cart.Contains(42, 0), "zero variant matches any")
	assert.True(t, cart.Contains(42, 3))
	assert.False(t, cart.Contains(42, 4))
	assert.False(t, cart.Contains(43, 0))
}
