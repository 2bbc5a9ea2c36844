// internal/domain/product/entity.go
package product

import (
	"fmt"
	"math"
	"strings"
)

// Category is the menu section a product belongs to
type Category string

const (
	CategoryCoffee  Category = "coffee"
	CategoryTea     Category = "tea"
	CategoryPastry  Category = "pastry"
	CategoryDessert Category = "dessert"
)

// Categories lists the categories the backend accepts, in menu order
var Categories = []Category{CategoryCoffee, CategoryTea, CategoryPastry, CategoryDessert}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product is the backend's product record. Image holds either a plain URL or
// image codec ciphertext, depending on how the product was created.
type Product struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category,omitempty"`
}

// Input is the writable part of a product, sent on create and update
type Input struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Image       string   `json:"image,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category,omitempty"`
}

// Validate checks the input before it is sent
func (in *Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return fmt.Errorf("price must be a finite number")
	}
	if in.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	if in.Category != "" && !in.Category.Valid() {
		return fmt.Errorf("unknown category %q", in.Category)
	}
	return nil
}

// Result is the uniform outcome of a catalog call
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`

	// ReauthRequired is set when the backend rejected the admin token (403);
	// callers clear the stored token and send the admin back to login.
	ReauthRequired bool `json:"reauthRequired,omitempty"`
}

// FilterByName keeps products whose name contains query, ignoring case
func FilterByName(products []Product, query string) []Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products
	}

	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
