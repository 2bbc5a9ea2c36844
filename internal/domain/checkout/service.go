// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/brewflow-storefront/internal/domain/cart"
	"github.com/your-org/brewflow-storefront/internal/infrastructure/backend"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"github.com/your-org/brewflow-storefront/internal/pkg/notify"
	"golang.org/x/sync/singleflight"
)

const msgFailed = "Failed to start checkout process."

// Cart is the part of the cart engine checkout reads
type Cart interface {
	Items() []cart.CartItem
	IsEmpty() bool
}

// Navigator sends the customer to the hosted payment page
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(ctx context.Context, url string) error

// Navigate calls f
func (f NavigatorFunc) Navigate(ctx context.Context, url string) error {
	return f(ctx, url)
}

// LineItem is one cart line as the payment provider sees it
type LineItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Request is the body of POST /create-checkout
type Request struct {
	LineItems  []LineItem `json:"lineItems"`
	CustomerID string     `json:"customerId"`
}

// Session is a created checkout session
type Session struct {
	CheckoutURL string `json:"checkoutUrl"`

	// Duplicate is set for callers that joined a checkout already in flight
	// for the same customer instead of creating their own.
	Duplicate bool `json:"duplicate,omitempty"`
}

// Service turns a cart into a hosted checkout session
type Service struct {
	client *backend.Client
	logger logrus.FieldLogger
	group  singleflight.Group
}

// NewService creates a new checkout service
func NewService(client *backend.Client, logger logrus.FieldLogger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// BuildRequest maps cart lines to the checkout request body
func BuildRequest(items []cart.CartItem, customerID string) Request {
	lineItems := make([]LineItem, len(items))
	for i, item := range items {
		lineItems[i] = LineItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
	}
	return Request{LineItems: lineItems, CustomerID: customerID}
}

// Checkout creates a checkout session for the cart and hands its URL to nav.
// The cart is left as is: the customer may abandon payment and come back.
// Concurrent checkouts for one customer share a single backend session.
func (s *Service) Checkout(ctx context.Context, c Cart, customerID string, nav Navigator, n notify.Notifier) (*Session, error) {
	if n == nil {
		n = notify.Discard{}
	}

	if c.IsEmpty() {
		n.Notify(ctx, notify.Warning("Cart Empty", "Please add items before checkout."))
		return nil, apperr.Validation("checkout.Checkout", "Cart Empty")
	}
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		n.Notify(ctx, notify.Warning("Customer ID required", "Please continue as a customer first."))
		return nil, apperr.Validation("checkout.Checkout", "Customer ID required")
	}

	n.Notify(ctx, notify.Info("Processing...", "Creating checkout session..."))

	req := BuildRequest(c.Items(), customerID)
	leader := false
	v, err, _ := s.group.Do(customerID, func() (interface{}, error) {
		leader = true
		// joined callers must not fail because the first caller went away
		return s.create(context.WithoutCancel(ctx), req)
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"customer_id": customerID,
			"timeout":     apperr.IsTimeout(err),
		}).WithError(err).Error("Checkout error")
		n.Notify(ctx, notify.Error("Error", msgFailed))
		return nil, err
	}

	session := *v.(*Session)
	session.Duplicate = !leader

	n.Notify(ctx, notify.Success("Redirecting", "Opening checkout..."))
	if err := nav.Navigate(ctx, session.CheckoutURL); err != nil {
		return nil, apperr.Transport("checkout.Navigate", msgFailed, err)
	}
	return &session, nil
}

func (s *Service) create(ctx context.Context, req Request) (*Session, error) {
	const op = "checkout.Create"

	var session Session
	err := s.client.DoJSON(ctx, op, backend.Request{
		Method: http.MethodPost,
		Path:   "/create-checkout",
		Body:   req,
	}, &session, msgFailed)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(session.CheckoutURL) == "" {
		return nil, apperr.Transport(op, "No checkout URL returned", nil)
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id": req.CustomerID,
		"lines":       len(req.LineItems),
	}).Info("Checkout session created")
	return &Session{CheckoutURL: session.CheckoutURL}, nil
}
