package checkout

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/brewflow-storefront/internal/domain/cart"
	"github.com/your-org/brewflow-storefront/internal/infrastructure/backend"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"github.com/your-org/brewflow-storefront/internal/pkg/logger"
	"github.com/your-org/brewflow-storefront/internal/pkg/notify"
)

type staticCart []cart.CartItem

func (c staticCart) Items() []cart.CartItem { return c }
func (c staticCart) IsEmpty() bool          { return len(c) == 0 }

type recordingNavigator struct {
	mu   sync.Mutex
	urls []string
}

func (n *recordingNavigator) Navigate(_ context.Context, url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, url)
	return nil
}

func (n *recordingNavigator) URLs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.urls...)
}

func newTestService(t *testing.T, timeout time.Duration, handler http.HandlerFunc) (*Service, *int32) {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := backend.New(srv.URL, timeout, srv.Client(), logger.Discard())
	return NewService(client, logger.Discard()), &calls
}

var latteCart = staticCart{{ID: "p1", Name: "Latte", Price: 120, Quantity: 2}}

func TestCheckoutSendsExactBody(t *testing.T) {
	svc, _ := newTestService(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/create-checkout", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"lineItems":[{"name":"Latte","price":120,"quantity":2}],"customerId":"CUST-1"}`, string(body))

		_, _ = w.Write([]byte(`{"checkoutUrl":"https://pay.example/abc"}`))
	})
	nav := &recordingNavigator{}
	rec := notify.NewRecorder()

	session, err := svc.Checkout(t.Context(), latteCart, "CUST-1", nav, rec)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/abc", session.CheckoutURL)
	assert.False(t, session.Duplicate)
	assert.Equal(t, []string{"https://pay.example/abc"}, nav.URLs())

	notices := rec.Notices()
	require.Len(t, notices, 2)
	assert.Equal(t, notify.Info("Processing...", "Creating checkout session..."), notices[0])
	assert.Equal(t, "Redirecting", notices[1].Title)
}

func TestCheckoutEmptyCartStaysLocal(t *testing.T) {
	svc, calls := newTestService(t, time.Second, func(w http.ResponseWriter, r *http.Request) {})
	nav := &recordingNavigator{}
	rec := notify.NewRecorder()

	_, err := svc.Checkout(t.Context(), staticCart{}, "CUST-1", nav, rec)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, atomic.LoadInt32(calls))
	assert.Empty(t, nav.URLs())
	assert.Equal(t, []notify.Notice{notify.Warning("Cart Empty", "Please add items before checkout.")}, rec.Notices())
}

func TestCheckoutFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"paymongo down"}`))
		},
		"missing url": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"cs_1"}`))
		},
		"malformed json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			svc, calls := newTestService(t, time.Second, handler)
			nav := &recordingNavigator{}
			rec := notify.NewRecorder()

			_, err := svc.Checkout(t.Context(), latteCart, "CUST-1", nav, rec)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindTransport))
			assert.Empty(t, nav.URLs())
			assert.EqualValues(t, 1, atomic.LoadInt32(calls), "no retry")

			notices := rec.Notices()
			assert.Equal(t, notify.Error("Error", "Failed to start checkout process."), notices[len(notices)-1])
		})
	}
}

func TestCheckoutTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	svc, _ := newTestService(t, 50*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	_, err := svc.Checkout(t.Context(), latteCart, "CUST-1", &recordingNavigator{}, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsTimeout(err))
}

func TestConcurrentCheckoutsShareOneSession(t *testing.T) {
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})

	svc, calls := newTestService(t, 5*time.Second, func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{"checkoutUrl":"https://pay.example/one"}`))
	})
	nav := &recordingNavigator{}

	var (
		wg       sync.WaitGroup
		sessions [2]*Session
		errs     [2]error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions[0], errs[0] = svc.Checkout(context.Background(), latteCart, "CUST-1", nav, nil)
	}()
	<-arrived

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions[1], errs[1] = svc.Checkout(context.Background(), latteCart, "CUST-1", nav, nil)
	}()
	// let the second caller reach the in-flight call before it completes
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
	assert.Equal(t, sessions[0].CheckoutURL, sessions[1].CheckoutURL)
	assert.False(t, sessions[0].Duplicate)
	assert.True(t, sessions[1].Duplicate)
	assert.Len(t, nav.URLs(), 2)
}

func TestDifferentCustomersAreNotCoalesced(t *testing.T) {
	svc, calls := newTestService(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_, _ = w.Write([]byte(`{"checkoutUrl":"https://pay.example/` + req.CustomerID + `"}`))
	})

	a, err := svc.Checkout(t.Context(), latteCart, "A", &recordingNavigator{}, nil)
	require.NoError(t, err)
	b, err := svc.Checkout(t.Context(), latteCart, "B", &recordingNavigator{}, nil)
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt32(calls))
	assert.NotEqual(t, a.CheckoutURL, b.CheckoutURL)
}

func TestBuildRequestKeepsOrder(t *testing.T) {
	req := BuildRequest([]cart.CartItem{
		{ID: "b", Name: "Tea", Price: 50, Quantity: 1},
		{ID: "a", Name: "Latte", Price: 120, Quantity: 3},
	}, "CUST-9")

	assert.Equal(t, "CUST-9", req.CustomerID)
	assert.Equal(t, []LineItem{{Name: "Tea", Price: 50, Quantity: 1}, {Name: "Latte", Price: 120, Quantity: 3}}, req.LineItems)
}
