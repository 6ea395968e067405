package storefront

import (
	"context"
	"fmt"
	"strconv"

	"github.com/duynhne/storefront-gateway/internal/session"
)

// Address is one saved shipping address.
type Address struct {
	ID        int64  `json:"id"`
	Label     string `json:"label,omitempty"`
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	ZipCode   string `json:"zipCode"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	IsDefault bool   `json:"isDefault"`
}

// Addresses is the shipping-address client.
type Addresses struct {
	api   api
	creds session.Credentials
}

func NewAddresses(api api, creds session.Credentials) *Addresses {
	return &Addresses{api: api, creds: creds}
}

// List fetches all saved addresses.
func (a *Addresses) List(ctx context.Context) ([]Address, error) {
	var addresses []Address
	if err := a.api.Get(ctx, "/users/addresses", nil, a.creds.AuthHeaders(), &addresses); err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}

// Get fetches one address.
func (a *Addresses) Get(ctx context.Context, addressID int64) (*Address, error) {
	var address Address
	if err := a.api.Get(ctx, a.endpoint(addressID), nil, a.creds.AuthHeaders(), &address); err != nil {
		return nil, fmt.Errorf("get address %d: %w", addressID, err)
	}
	return &address, nil
}

// Create saves a new address and returns it.
func (a *Addresses) Create(ctx context.Context, address Address) (*Address, error) {
	var created Address
	if err := a.api.Post(ctx, "/users/addresses", address, a.creds.AuthHeaders(), &created); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return &created, nil
}

// Update replaces an existing address.
func (a *Addresses) Update(ctx context.Context, addressID int64, address Address) error {
	if err := a.api.Put(ctx, a.endpoint(addressID), address, a.creds.AuthHeaders(), nil); err != nil {
		return fmt.Errorf("update address %d: %w", addressID, err)
	}
	return nil
}

// Delete removes an address.
func (a *Addresses) Delete(ctx context.Context, addressID int64) error {
	if err := a.api.Delete(ctx, a.endpoint(addressID), nil, a.creds.AuthHeaders(), nil); err != nil {
		return fmt.Errorf("delete address %d: %w", addressID, err)
	}
	return nil
}

// SetDefault marks an address as the default shipping target.
func (a *Addresses) SetDefault(ctx context.Context, addressID int64) error {
	endpoint := a.endpoint(addressID) + "/default"
	if err := a.api.Patch(ctx, endpoint, nil, a.creds.AuthHeaders(), nil); err != nil {
		return fmt.Errorf("set default address %d: %w", addressID, err)
	}
	return nil
}

func (a *Addresses) endpoint(addressID int64) string {
	return "/users/addresses/" + strconv.FormatInt(addressID, 10)
}
