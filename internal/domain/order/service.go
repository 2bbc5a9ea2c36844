// internal/domain/order/service.go
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/brewflow-storefront/internal/infrastructure/backend"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
)

const (
	msgUnexpected   = "Unexpected response from server"
	msgUpdateFailed = "Failed to update order status"
	msgFetchFailed  = "Error fetching orders"
)

// Service reads and advances orders on the backend
type Service struct {
	client *backend.Client
	logger logrus.FieldLogger
}

// NewService creates a new order service
func NewService(client *backend.Client, logger logrus.FieldLogger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// ListForCustomer returns the orders placed under customerID
func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]Order, error) {
	const op = "order.ListForCustomer"

	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, apperr.Validation(op, "Customer ID required")
	}

	var orders []Order
	err := s.client.DoJSON(ctx, op, backend.Request{
		Method: http.MethodGet,
		Path:   "/api/orders",
		Query:  url.Values{"customerId": {customerID}},
	}, &orders, msgFetchFailed)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// ListAll returns every order for the admin board. The backend must answer
// with a JSON array.
func (s *Service) ListAll(ctx context.Context, token string) ([]Order, error) {
	const op = "order.ListAll"

	resp, err := s.client.Do(ctx, op, backend.Request{
		Method: http.MethodGet,
		Path:   "/api/orders",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		return nil, apperr.Authorization(op, "Not authorized. Please login again.")
	}

	var raw json.RawMessage
	if err := json.Unmarshal(resp.Body, &raw); err != nil || !isArray(raw) {
		return nil, &apperr.Error{Kind: apperr.KindTransport, Op: op, Message: msgUnexpected, Status: resp.StatusCode}
	}

	var orders []Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, apperr.Transport(op, msgUnexpected, err)
	}
	return orders, nil
}

// UpdateStatus sets the order's status on the backend
func (s *Service) UpdateStatus(ctx context.Context, token, id string, status PaymentStatus) (*Order, error) {
	const op = "order.UpdateStatus"

	if !status.Valid() {
		return nil, apperr.Validation(op, fmt.Sprintf("unknown status %q", status))
	}

	var updated Order
	err := s.client.DoJSON(ctx, op, backend.Request{
		Method: http.MethodPut,
		Path:   "/api/orders/" + url.PathEscape(id) + "/status",
		Body:   map[string]PaymentStatus{"paymentStatus": status},
		Token:  token,
	}, &updated, msgUpdateFailed)
	if err != nil {
		// non-2xx answers always read as the generic failure
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Status != 0 {
			appErr.Message = msgUpdateFailed
		}
		return nil, err
	}

	if updated.ID == "" {
		updated.ID = id
	}
	updated.PaymentStatus = status

	s.logger.WithFields(logrus.Fields{
		"order_id": id,
		"status":   status,
	}).Info("Order status updated")
	return &updated, nil
}

// Advance moves o one step forward. Served orders cannot move.
func (s *Service) Advance(ctx context.Context, token string, o Order) (*Order, error) {
	next, ok := o.PaymentStatus.Next()
	if !ok {
		return nil, apperr.Validation("order.Advance", fmt.Sprintf("order in status %q cannot be advanced", o.PaymentStatus))
	}
	return s.UpdateStatus(ctx, token, o.ID, next)
}

// Find returns one order from the full list
func (s *Service) Find(ctx context.Context, token, id string) (*Order, error) {
	orders, err := s.ListAll(ctx, token)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, apperr.NotFound("order.Find", "Order not found")
}

// FindForCustomer returns one of customerID's orders
func (s *Service) FindForCustomer(ctx context.Context, customerID, id string) (*Order, error) {
	orders, err := s.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, apperr.NotFound("order.FindForCustomer", "Order not found")
}

func isArray(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}
