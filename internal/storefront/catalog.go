package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// ErrSuperseded is returned when a listing response arrives after a newer
// request has already been issued. The stale result is discarded
// unconditionally; it never overwrites the newer state.
var ErrSuperseded = errors.New("catalog: response superseded by a newer request")

const (
	defaultPageSize = 40
	defaultSort     = "createdAt,DESC"
)

// sortAliases maps UI sort values to the backend's sort parameter.
var sortAliases = map[string]string{
	"latest":     "createdAt,DESC",
	"popular":    "reviewCount,DESC",
	"price_asc":  "salePrice,ASC",
	"price_desc": "salePrice,DESC",
}

// SortParam resolves a UI sort alias; unknown values fall back to the
// default sort.
func SortParam(alias string) string {
	if v, ok := sortAliases[alias]; ok {
		return v
	}
	return defaultSort
}

// ListParams filters a product listing. Page is 0-based.
type ListParams struct {
	CategoryID int64
	Tag        string
	Page       int
	Size       int
	Sort       string
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.CategoryID != 0 {
		q.Set("categoryId", strconv.FormatInt(p.CategoryID, 10))
	}
	if p.Tag != "" {
		q.Set("tag", p.Tag)
	}
	q.Set("page", strconv.Itoa(p.Page))
	size := p.Size
	if size <= 0 {
		size = defaultPageSize
	}
	q.Set("size", strconv.Itoa(size))
	sort := p.Sort
	if sort == "" {
		sort = defaultSort
	}
	q.Set("sort", sort)
	return q
}

// Product is the backend's product shape.
type Product struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	ImageURL     string   `json:"imageUrl"`
	RegularPrice int64    `json:"regularPrice"`
	SellingPrice int64    `json:"sellingPrice"`
	DiscountRate int      `json:"discountRate"`
	Tags         []string `json:"tags"`
}

// DisplayProduct is the product as rendered by listing pages.
type DisplayProduct struct {
	ID            int64    `json:"id"`
	Href          string   `json:"href"`
	Image         string   `json:"image"`
	ImageAlt      string   `json:"imageAlt"`
	IsBest        bool     `json:"isBest"`
	IsNew         bool     `json:"isNew"`
	Name          string   `json:"name"`
	Price         int64    `json:"price"`
	OriginalPrice int64    `json:"originalPrice,omitempty"`
	DiscountRate  int      `json:"discountRate"`
	Tags          []string `json:"tags"`
}

// Page is one normalized listing page. Page is 0-based regardless of the
// backend's 1-based numbering.
type Page struct {
	Products      []DisplayProduct `json:"products"`
	Page          int              `json:"page"`
	Size          int              `json:"size"`
	TotalElements int              `json:"totalElements"`
	TotalPages    int              `json:"totalPages"`
}

// catalogPayload accepts both the camelCase and snake_case pagination
// fields the backend has shipped.
type catalogPayload struct {
	Content            []Product `json:"content"`
	Page               int       `json:"page"`
	Size               int       `json:"size"`
	TotalElements      int       `json:"totalElements"`
	TotalElementsSnake int       `json:"total_elements"`
}

func (p catalogPayload) totalElements() int {
	if p.TotalElementsSnake != 0 {
		return p.TotalElementsSnake
	}
	return p.TotalElements
}

// Catalog lists products. Listing carries a request-generation counter:
// when filter changes overlap in flight, only the newest request's response
// is kept.
type Catalog struct {
	api api

	mu     sync.Mutex
	gen    uint64
	latest *Page
}

func NewCatalog(api api) *Catalog {
	return &Catalog{api: api}
}

// List fetches one product page. If a newer List call was issued while this
// one was in flight, the result is dropped and ErrSuperseded returned.
func (c *Catalog) List(ctx context.Context, params ListParams) (*Page, error) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	var payload catalogPayload
	err := c.api.Get(ctx, "/products", params.query(), nil, &payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	page := normalizePage(payload, params)
	c.latest = page
	return page, nil
}

// Latest returns the most recent listing page, or nil before the first
// successful List.
func (c *Catalog) Latest() *Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Search queries the storefront search endpoint and normalizes the result
// the same way List does.
func (c *Catalog) Search(ctx context.Context, keyword string, page, size int) (*Page, error) {
	if size <= 0 {
		size = defaultPageSize
	}
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var payload catalogPayload
	if err := c.api.Get(ctx, "/main/products/search", q, nil, &payload); err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return normalizePage(payload, ListParams{Page: page, Size: size}), nil
}

func normalizePage(payload catalogPayload, params ListParams) *Page {
	products := make([]DisplayProduct, 0, len(payload.Content))
	for _, p := range payload.Content {
		products = append(products, transformProduct(p))
	}

	size := payload.Size
	if size <= 0 {
		size = params.Size
	}
	if size <= 0 {
		size = defaultPageSize
	}

	total := payload.totalElements()
	totalPages := (total + size - 1) / size

	// The backend numbers pages from 1; the storefront from 0.
	pageNum := payload.Page - 1
	if payload.Page == 0 {
		pageNum = params.Page
	}

	return &Page{
		Products:      products,
		Page:          pageNum,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

// transformProduct maps the backend product to its display form: selling
// price wins when discounted, and BEST/NEW badges come from tags matched
// case-insensitively.
func transformProduct(p Product) DisplayProduct {
	discounted := p.SellingPrice != 0 && p.SellingPrice < p.RegularPrice

	price := p.SellingPrice
	if price == 0 {
		price = p.RegularPrice
	}

	var originalPrice int64
	if discounted {
		originalPrice = p.RegularPrice
	}

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return DisplayProduct{
		ID:            p.ID,
		Href:          fmt.Sprintf("/products/%d", p.ID),
		Image:         p.ImageURL,
		ImageAlt:      p.Name,
		IsBest:        hasTag(tags, "BEST"),
		IsNew:         hasTag(tags, "NEW"),
		Name:          p.Name,
		Price:         price,
		OriginalPrice: originalPrice,
		DiscountRate:  p.DiscountRate,
		Tags:          tags,
	}
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, want) {
			return true
		}
	}
	return false
}
