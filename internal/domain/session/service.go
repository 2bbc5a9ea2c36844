// internal/domain/session/service.go
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"github.com/your-org/brewflow-storefront/internal/pkg/persistence"
)

// Scheme selects how new customer identifiers look
type Scheme string

const (
	// SchemeUUID generates random v4 UUIDs
	SchemeUUID Scheme = "uuid"
	// SchemeLegacy generates CUST-<unix millis>-<0..999>, the format older clients handed out
	SchemeLegacy Scheme = "legacy"
)

// Service owns the visitor's durable customer identity
type Service struct {
	store  persistence.Store
	scheme Scheme
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewService creates an identity service over the visitor's store
func NewService(store persistence.Store, scheme Scheme, logger logrus.FieldLogger) *Service {
	if scheme == "" {
		scheme = SchemeUUID
	}
	return &Service{
		store:  store,
		scheme: scheme,
		logger: logger,
		now:    time.Now,
	}
}

// Ensure returns the stored identifier, generating and persisting one if
// none exists. It never replaces an existing identifier.
func (s *Service) Ensure(ctx context.Context) (string, error) {
	id, ok, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		return id, nil
	}

	id = s.Generate()
	if err := s.store.Set(ctx, persistence.KeyCustomerID, id); err != nil {
		return "", fmt.Errorf("failed to persist customer id: %w", err)
	}

	s.logger.WithField("customer_id", id).Info("Generated customer identity")
	return id, nil
}

// Get returns the stored identifier without generating one
func (s *Service) Get(ctx context.Context) (string, bool, error) {
	id, err := s.store.Get(ctx, persistence.KeyCustomerID)
	if errors.Is(err, persistence.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read customer id: %w", err)
	}
	if strings.TrimSpace(id) == "" {
		return "", false, nil
	}
	return id, true, nil
}

// Adopt stores an identifier the customer typed in ("continue as customer"),
// replacing whatever was stored before.
func (s *Service) Adopt(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperr.Validation("session.Adopt", "Customer ID required")
	}

	if err := s.store.Set(ctx, persistence.KeyCustomerID, id); err != nil {
		return "", fmt.Errorf("failed to persist customer id: %w", err)
	}
	return id, nil
}

// Clear forgets the identifier; the next Ensure starts a new customer
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Remove(ctx, persistence.KeyCustomerID); err != nil {
		return fmt.Errorf("failed to clear customer id: %w", err)
	}
	return nil
}

// Generate returns a new identifier in the configured scheme
func (s *Service) Generate() string {
	if s.scheme == SchemeLegacy {
		return fmt.Sprintf("CUST-%d-%d", s.now().UnixMilli(), rand.IntN(1000))
	}
	return uuid.NewString()
}
