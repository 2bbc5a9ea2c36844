// internal/interfaces/http/handlers/common.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/brewflow-storefront/internal/config"
	"github.com/your-org/brewflow-storefront/internal/domain/auth"
	"github.com/your-org/brewflow-storefront/internal/domain/cart"
	"github.com/your-org/brewflow-storefront/internal/domain/checkout"
	"github.com/your-org/brewflow-storefront/internal/domain/order"
	"github.com/your-org/brewflow-storefront/internal/domain/product"
	"github.com/your-org/brewflow-storefront/internal/domain/session"
	"github.com/your-org/brewflow-storefront/internal/domain/upload"
	"github.com/your-org/brewflow-storefront/internal/infrastructure/backend"
	"github.com/your-org/brewflow-storefront/internal/interfaces/http/middleware"
	pkgauth "github.com/your-org/brewflow-storefront/internal/pkg/auth"
	"github.com/your-org/brewflow-storefront/internal/pkg/imagecodec"
	"github.com/your-org/brewflow-storefront/internal/pkg/notify"
	"github.com/your-org/brewflow-storefront/internal/pkg/pdf"
	"github.com/your-org/brewflow-storefront/internal/pkg/persistence"
)

// Dependencies are the process-wide services the handlers share
type Dependencies struct {
	Config   *config.Config
	Store    persistence.Store
	Backend  *backend.Client
	Codec    *imagecodec.Codec
	Products *product.Service
	Checkout *checkout.Service
	Orders   *order.Service
	Uploads  *upload.Service
	Receipts *pdf.Service
	Locks    *persistence.KeyedMutex
	Logger   logrus.FieldLogger
}

// NewDependencies wires the shared services from configuration
func NewDependencies(cfg *config.Config, store persistence.Store, client *backend.Client, logger logrus.FieldLogger) *Dependencies {
	codec := imagecodec.NewFromConfig(cfg, logger)
	return &Dependencies{
		Config:   cfg,
		Store:    store,
		Backend:  client,
		Codec:    codec,
		Products: product.NewService(client, codec, logger),
		Checkout: checkout.NewService(client, logger),
		Orders:   order.NewService(client, logger),
		Uploads:  upload.NewService(cfg, codec, logger),
		Receipts: pdf.NewService(cfg),
		Locks:    persistence.NewKeyedMutex(),
		Logger:   logger,
	}
}

// visitor is the per-request view of one browser's state
type visitor struct {
	id      string
	store   persistence.Store
	notices *notify.Recorder
	session *session.Service
	auth    *auth.Service
	locks   *persistence.KeyedMutex
	logger  logrus.FieldLogger
}

// visitorKey caches the visitor on the gin context
const visitorKey = "visitor_state"

func (d *Dependencies) visitor(c *gin.Context) *visitor {
	if v, ok := c.Get(visitorKey); ok {
		return v.(*visitor)
	}

	id := middleware.GetVisitorID(c)
	logger := d.Logger.WithFields(logrus.Fields{
		"visitor_id": id,
		"request_id": c.GetString(middleware.RequestIDKey),
	})
	store := persistence.Namespace(d.Store, "visitor:"+id)

	v := &visitor{
		id:      id,
		store:   store,
		notices: notify.NewRecorder(),
		session: session.NewService(store, session.Scheme(d.Config.Identity.Scheme), logger),
		auth:    auth.NewService(d.Backend, store, pkgauth.NewPasswordPolicy(d.Config.Security.PasswordMinLength), logger),
		locks:   d.Locks,
		logger:  logger,
	}
	c.Set(visitorKey, v)
	return v
}

// lock holds the visitor's state until the returned func is called. Requests
// from one browser run concurrently, and the cart and identity are
// read-modify-write.
func (v *visitor) lock() func() {
	return v.locks.Lock(v.id)
}

func (v *visitor) cart(c *gin.Context) (*cart.Engine, error) {
	return cart.Load(c.Request.Context(), v.store, v.notices, v.logger)
}

// AdminToken implements middleware.TokenSource
func (d *Dependencies) AdminToken(c *gin.Context) (string, error) {
	return d.visitor(c).auth.Token(c.Request.Context())
}

// RejectUnauthorized writes the response for admin routes without a usable token
func (d *Dependencies) RejectUnauthorized(c *gin.Context, err error) {
	v := d.visitor(c)
	v.notices.Notify(c.Request.Context(), notify.Error("Not authorized", err.Error()))
	respondError(c, v, err)
}
