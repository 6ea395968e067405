package storefront

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/duynhne/storefront-gateway/internal/session"
)

// CartItem is one line item as the backend reports it.
type CartItem struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId"`
	VariantID int64  `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name,omitempty"`
	Price     int64  `json:"price,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// CartItemInput is what AddItems sends. VariantID is optional.
type CartItemInput struct {
	ProductID int64 `json:"productId"`
	VariantID int64 `json:"variantId,omitempty"`
	Quantity  int   `json:"quantity"`
}

// cartPayload tolerates the item-list field names different backend
// versions have used. Exactly one of the fields is populated.
type cartPayload struct {
	Items     []CartItem `json:"items"`
	CartItems []CartItem `json:"cartItems"`
	Content   []CartItem `json:"content"`
}

func (p cartPayload) list() []CartItem {
	switch {
	case p.Items != nil:
		return p.Items
	case p.CartItems != nil:
		return p.CartItems
	case p.Content != nil:
		return p.Content
	}
	return nil
}

// Cart is the cart client. The cached item list mirrors the last server
// response; every mutation goes through the backend first.
type Cart struct {
	api   api
	creds session.Credentials

	mu    sync.Mutex
	items []CartItem
}

func NewCart(api api, creds session.Credentials) *Cart {
	return &Cart{api: api, creds: creds}
}

// Items returns a copy of the cached line items.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Count is the number of distinct line items, not the quantity sum.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Fetch reloads the cart from the backend.
func (c *Cart) Fetch(ctx context.Context) ([]CartItem, error) {
	var payload cartPayload
	if err := c.api.Get(ctx, "/cart", nil, c.creds.AuthHeaders(), &payload); err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	items := payload.list()
	if items == nil {
		items = []CartItem{}
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return items, nil
}

// AddItems adds line items. The backend accepts an array so multi-variant
// adds are one call. When the response does not echo the updated list, the
// cart is re-fetched.
func (c *Cart) AddItems(ctx context.Context, inputs ...CartItemInput) error {
	var payload cartPayload
	if err := c.api.Post(ctx, "/cart/items", inputs, c.creds.AuthHeaders(), &payload); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	if items := payload.list(); len(items) > 0 {
		c.mu.Lock()
		c.items = items
		c.mu.Unlock()
		return nil
	}
	_, err := c.Fetch(ctx)
	return err
}

// UpdateQuantity changes one line item's quantity.
func (c *Cart) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	body := map[string]int{"quantity": quantity}
	endpoint := fmt.Sprintf("/cart/items/%d", itemID)
	if err := c.api.Patch(ctx, endpoint, body, c.creds.AuthHeaders(), nil); err != nil {
		return fmt.Errorf("update cart quantity: %w", err)
	}
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == itemID {
			c.items[i].Quantity = quantity
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// RemoveItems deletes line items by id. Single and bulk removal share the
// same call shape.
func (c *Cart) RemoveItems(ctx context.Context, itemIDs ...int64) error {
	if err := c.api.Delete(ctx, "/cart/items", itemIDs, c.creds.AuthHeaders(), nil); err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}
	removed := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		removed[id] = true
	}
	c.mu.Lock()
	kept := c.items[:0]
	for _, item := range c.items {
		if !removed[item.ID] {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.mu.Unlock()
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	if err := c.api.Delete(ctx, "/cart", nil, c.creds.AuthHeaders(), nil); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	return nil
}

// Merge transfers the guest cart identified by guestID into the member's
// cart, then re-fetches. A merge failure is logged and swallowed — the
// member still sees whatever cart is fetchable; login is never blocked on
// the merge. With no guest id there is nothing to merge and Merge is just a
// fetch.
func (c *Cart) Merge(ctx context.Context, guestID string) error {
	if guestID != "" {
		header := c.creds.AuthHeaders()
		header.Set(session.HeaderGuestSession, guestID)
		if err := c.api.Post(ctx, "/cart/merge", nil, header, nil); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("Guest cart merge failed")
		}
	}
	_, err := c.Fetch(ctx)
	return err
}

// Contains reports whether the cached cart holds the product. A zero
// variantID matches any variant.
func (c *Cart) Contains(productID, variantID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if item.ProductID != productID {
			continue
		}
		if variantID == 0 || item.VariantID == variantID {
			return true
		}
	}
	return false
}
