package storefront

import (
	"context"
	"fmt"
	"sync"

	"github.com/duynhne/storefront-gateway/internal/session"
)

// WishlistItem is one saved product.
type WishlistItem struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId"`
	Name      string `json:"name,omitempty"`
	Price     int64  `json:"price,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

type wishlistPayload struct {
	Items []WishlistItem `json:"items"`
}

// Wishlist mirrors the member's (or guest's) wishlist. Same identity rules
// as the cart: members authenticate, guests send their session id.
type Wishlist struct {
	api   api
	creds session.Credentials

	mu    sync.Mutex
	items []WishlistItem
}

func NewWishlist(api api, creds session.Credentials) *Wishlist {
	return &Wishlist{api: api, creds: creds}
}

func (w *Wishlist) Items() []WishlistItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]WishlistItem, len(w.items))
	copy(out, w.items)
	return out
}

func (w *Wishlist) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// Fetch reloads the wishlist from the backend.
func (w *Wishlist) Fetch(ctx context.Context) ([]WishlistItem, error) {
	var payload wishlistPayload
	if err := w.api.Get(ctx, "/wishlist", nil, w.creds.AuthHeaders(), &payload); err != nil {
		return nil, fmt.Errorf("fetch wishlist: %w", err)
	}
	items := payload.Items
	if items == nil {
		items = []WishlistItem{}
	}
	w.mu.Lock()
	w.items = items
	w.mu.Unlock()
	return items, nil
}

// Add saves a product. The backend echoes the created item.
func (w *Wishlist) Add(ctx context.Context, productID int64) error {
	body := map[string]int64{"productId": productID}
	var created WishlistItem
	if err := w.api.Post(ctx, "/wishlist/items", body, w.creds.AuthHeaders(), &created); err != nil {
		return fmt.Errorf("add to wishlist: %w", err)
	}
	if created.ID != 0 || created.ProductID != 0 {
		w.mu.Lock()
		w.items = append(w.items, created)
		w.mu.Unlock()
	}
	return nil
}

// Remove deletes saved items by wishlist item id.
func (w *Wishlist) Remove(ctx context.Context, itemIDs ...int64) error {
	if err := w.api.Delete(ctx, "/wishlist/items", itemIDs, w.creds.AuthHeaders(), nil); err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	removed := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		removed[id] = true
	}
	w.mu.Lock()
	kept := w.items[:0]
	for _, item := range w.items {
		if !removed[item.ID] {
			kept = append(kept, item)
		}
	}
	w.items = kept
	w.mu.Unlock()
	return nil
}

// Clear empties the wishlist.
func (w *Wishlist) Clear(ctx context.Context) error {
	if err := w.api.Delete(ctx, "/wishlist", nil, w.creds.AuthHeaders(), nil); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	w.mu.Lock()
	w.items = nil
	w.mu.Unlock()
	return nil
}

// Contains reports whether the product is saved, against the cached list.
func (w *Wishlist) Contains(productID int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, item := range w.items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// ItemFor returns the cached wishlist entry for a product, if any.
func (w *Wishlist) ItemFor(productID int64) (WishlistItem, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, item := range w.items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return WishlistItem{}, false
}
