// internal/domain/product/service.go
package product

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/brewflow-storefront/internal/infrastructure/backend"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"github.com/your-org/brewflow-storefront/internal/pkg/imagecodec"
)

const (
	msgTokenMissing  = "Admin token missing"
	msgReauth        = "Not authorized. Please login again."
	msgCreated       = "Product created successfully."
	msgUpdated       = "Product updated successfully."
	msgFetchFailed   = "Failed to fetch products"
	msgCreateFailed  = "Failed to create product."
	msgUpdateFailed  = "Failed to update product."
	msgDeleteFailed  = "Failed to delete product."
	msgProductAbsent = "Product not found"
)

// Service is the product catalog client
type Service struct {
	client *backend.Client
	codec  *imagecodec.Codec
	logger logrus.FieldLogger
}

// NewService creates a new catalog client
func NewService(client *backend.Client, codec *imagecodec.Codec, logger logrus.FieldLogger) *Service {
	return &Service{
		client: client,
		codec:  codec,
		logger: logger,
	}
}

// envelope is the backend's {success, message, data} wrapper
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ListPublic fetches the menu for customers. Failures degrade to an empty list.
func (s *Service) ListPublic(ctx context.Context) Result[[]Product] {
	res := s.list(ctx, "")
	if !res.Success {
		s.logger.WithField("error", res.Message).Error("Error fetching products for users")
		res.Data = []Product{}
	}
	return res
}

// ListAdmin fetches the catalog with the admin token
func (s *Service) ListAdmin(ctx context.Context, token string) Result[[]Product] {
	if token == "" {
		return Result[[]Product]{Message: msgTokenMissing, Data: []Product{}}
	}
	return s.list(ctx, token)
}

// Find returns one product from the public catalog. The cart uses it to take
// a snapshot of name and price at add time.
func (s *Service) Find(ctx context.Context, id string) (Product, error) {
	res := s.list(ctx, "")
	if !res.Success {
		return Product{}, apperr.Transport("product.Find", res.Message, nil)
	}

	for _, p := range res.Data {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, apperr.NotFound("product.Find", msgProductAbsent)
}

// Create adds a product
func (s *Service) Create(ctx context.Context, token string, in Input) Result[Product] {
	if token == "" {
		return Result[Product]{Message: msgTokenMissing}
	}
	if err := in.Validate(); err != nil {
		return Result[Product]{Message: err.Error()}
	}

	res := s.write(ctx, "product.Create", backend.Request{
		Method: http.MethodPost,
		Path:   "/api/products",
		Body:   in,
		Token:  token,
	}, msgCreateFailed)
	if res.Success {
		res.Message = msgCreated
	}
	return res
}

// Update replaces a product's writable fields
func (s *Service) Update(ctx context.Context, token, id string, in Input) Result[Product] {
	if token == "" {
		return Result[Product]{Message: msgTokenMissing}
	}
	if err := in.Validate(); err != nil {
		return Result[Product]{Message: err.Error()}
	}

	res := s.write(ctx, "product.Update", backend.Request{
		Method: http.MethodPut,
		Path:   "/api/products/" + url.PathEscape(id),
		Body:   in,
		Token:  token,
	}, msgUpdateFailed)
	if res.Success {
		res.Message = msgUpdated
	}
	return res
}

// Delete removes a product
func (s *Service) Delete(ctx context.Context, token, id string) Result[struct{}] {
	if token == "" {
		return Result[struct{}]{Message: msgTokenMissing}
	}

	resp, err := s.client.Do(ctx, "product.Delete", backend.Request{
		Method: http.MethodDelete,
		Path:   "/api/products/" + url.PathEscape(id),
		Token:  token,
	})
	if err != nil {
		return Result[struct{}]{Message: apperr.MessageOf(err)}
	}
	if resp.StatusCode == http.StatusForbidden {
		return Result[struct{}]{Message: msgReauth, ReauthRequired: true}
	}

	var body envelope[struct{}]
	if err := resp.Decode(&body); err != nil {
		s.logger.WithError(err).Error("Error deleting product")
		return Result[struct{}]{Message: msgDeleteFailed}
	}
	if !body.Success {
		return Result[struct{}]{Message: orDefault(body.Message, msgDeleteFailed)}
	}
	return Result[struct{}]{Success: true, Message: body.Message}
}

// WithDisplayImages returns copies of products whose Image is something a
// browser can show: decrypted data URL, plain URL or the placeholder.
func (s *Service) WithDisplayImages(products []Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		p.Image = s.codec.Resolve(p.Image)
		out[i] = p
	}
	return out
}

func (s *Service) list(ctx context.Context, token string) Result[[]Product] {
	resp, err := s.client.Do(ctx, "product.List", backend.Request{
		Method: http.MethodGet,
		Path:   "/api/products",
		Token:  token,
	})
	if err != nil {
		return Result[[]Product]{Message: apperr.MessageOf(err), Data: []Product{}}
	}
	if resp.StatusCode == http.StatusForbidden {
		return Result[[]Product]{Message: msgReauth, ReauthRequired: true, Data: []Product{}}
	}

	var body envelope[[]Product]
	if err := resp.Decode(&body); err != nil {
		return Result[[]Product]{Message: msgFetchFailed, Data: []Product{}}
	}
	if !body.Success {
		return Result[[]Product]{Message: orDefault(body.Message, msgFetchFailed), Data: []Product{}}
	}
	if body.Data == nil {
		body.Data = []Product{}
	}
	return Result[[]Product]{Success: true, Message: body.Message, Data: body.Data}
}

func (s *Service) write(ctx context.Context, op string, req backend.Request, fallback string) Result[Product] {
	resp, err := s.client.Do(ctx, op, req)
	if err != nil {
		s.logger.WithField("op", op).WithError(err).Error("Product write failed")
		return Result[Product]{Message: apperr.MessageOf(err)}
	}
	if resp.StatusCode == http.StatusForbidden {
		return Result[Product]{Message: msgReauth, ReauthRequired: true}
	}

	var body envelope[Product]
	if err := resp.Decode(&body); err != nil {
		return Result[Product]{Message: fallback}
	}
	if !body.Success {
		return Result[Product]{Message: orDefault(body.Message, fallback)}
	}
	return Result[Product]{Success: true, Data: body.Data}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
