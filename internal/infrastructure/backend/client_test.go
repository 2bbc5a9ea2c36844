package backend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"github.com/your-org/brewflow-storefront/internal/pkg/logger"
)

func newTestClient(t *testing.T, timeout time.Duration, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", timeout, srv.Client(), logger.Discard())
}

func TestDoSendsHeadersAndQuery(t *testing.T) {
	client := newTestClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "CUST-1", r.URL.Query().Get("customerId"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"message":"short and stout"}`))
	})

	resp, err := client.Do(t.Context(), "test", Request{
		Method: http.MethodGet,
		Path:   "/api/orders",
		Query:  url.Values{"customerId": {"CUST-1"}},
		Token:  "tok",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.Equal(t, "short and stout", resp.Message())
}

func TestDoJSON(t *testing.T) {
	client := newTestClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"checkoutUrl":"https://pay.example"}`))
	})

	var out struct {
		CheckoutURL string `json:"checkoutUrl"`
	}
	err := client.DoJSON(t.Context(), "test", Request{Method: http.MethodPost, Path: "/x", Body: map[string]int{"a": 1}}, &out, "failed")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example", out.CheckoutURL)
}

func TestDoJSONStatusErrors(t *testing.T) {
	client := newTestClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/with-message" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad lineItems"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.DoJSON(t.Context(), "test", Request{Method: http.MethodGet, Path: "/with-message"}, nil, "fallback")
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "bad lineItems", appErr.Message)

	err = client.DoJSON(t.Context(), "test", Request{Method: http.MethodGet, Path: "/bare"}, nil, "fallback")
	assert.Equal(t, "fallback", apperr.MessageOf(err))
	assert.Equal(t, http.StatusBadGateway, apperr.HTTPStatus(err))
}

func TestDoTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	client := newTestClient(t, 30*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	_, err := client.Do(t.Context(), "test", Request{Method: http.MethodGet, Path: "/slow"})
	require.Error(t, err)
	assert.True(t, apperr.IsTimeout(err))
	assert.Equal(t, http.StatusGatewayTimeout, apperr.HTTPStatus(err))
}

func TestDoUnreachable(t *testing.T) {
	client := New("http://127.0.0.1:1", time.Second, nil, logger.Discard())

	_, err := client.Do(t.Context(), "test", Request{Method: http.MethodGet, Path: "/"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindTransport))
	assert.False(t, apperr.IsTimeout(err))
}

func TestDoRejectsOversizedResponse(t *testing.T) {
	client := newTestClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":["` + strings.Repeat("x", 64) + `"]}`))
	}).WithMaxResponseSize(32)

	_, err := client.Do(t.Context(), "test", Request{Method: http.MethodGet, Path: "/api/products"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindTransport))
	assert.Equal(t, "Backend response too large", apperr.MessageOf(err))
	assert.Equal(t, http.StatusBadGateway, apperr.HTTPStatus(err))
}

func TestDoAcceptsResponseAtLimit(t *testing.T) {
	body := `{"ok":true}`
	client := newTestClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}).WithMaxResponseSize(int64(len(body)))

	resp, err := client.Do(t.Context(), "test", Request{Method: http.MethodGet, Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, body, string(resp.Body))
}

func TestDoJSONDecodesCatalogLargerThanTenMiB(t *testing.T) {
	image := strings.Repeat("A", 12<<20)
	client := newTestClient(t, 5*time.Second, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]string{{"id": "p1", "image": image}},
		})
	})

	var out struct {
		Products []struct {
			ID    string `json:"id"`
			Image string `json:"image"`
		} `json:"products"`
	}
	err := client.DoJSON(t.Context(), "test", Request{Method: http.MethodGet, Path: "/api/products"}, &out, "failed")
	require.NoError(t, err)
	require.Len(t, out.Products, 1)
	assert.Len(t, out.Products[0].Image, len(image))
}

func TestWithMaxResponseSizeIgnoresNonPositive(t *testing.T) {
	client := New("http://127.0.0.1:1", time.Second, nil, logger.Discard()).WithMaxResponseSize(0)
	assert.Equal(t, int64(DefaultMaxResponseSize), client.maxBody)
}
