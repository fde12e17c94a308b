package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumea/checkout-bff/internal/domain/order"
)

func orderContact() order.Contact {
	return order.Contact{
		Name:    "Lin",
		Email:   "lin@example.com",
		Tel:     "0912345678",
		Address: "No.1, Sec. 1",
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(Config{
		BaseURL: srv.URL,
		Path:    "/v2/api/lumea",
		Timeout: 2 * time.Second,
	})
}

func TestHTTPClient_FetchCart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2/api/lumea/cart", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{"carts":[],"total":0,"final_total":0}}`))
	})

	cart, err := c.FetchCart(context.Background())
	require.NoError(t, err)
	assert.True(t, cart.Empty())
}

func TestHTTPClient_UpdateCartItem(t *testing.T) {
	var gotPath, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		_, _ = w.Write([]byte(`{"success":true,"message":"updated"}`))
	})

	err := c.UpdateCartItem(context.Background(), "line-1", "prod-1", 5)
	require.NoError(t, err)
	assert.Equal(t, "PUT /v2/api/lumea/cart/line-1", gotPath)
	assert.JSONEq(t, `{"data":{"product_id":"prod-1","qty":5}}`, gotBody)
}

func TestHTTPClient_RemoveCartItem_BackendRejection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"購物車品項不存在"}`))
	})

	err := c.RemoveCartItem(context.Background(), "gone")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok, "want APIError, got %v", err)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "購物車品項不存在", apiErr.Message)
}

func TestHTTPClient_ApplyCoupon_SuccessFalseBody(t *testing.T) {
	// The backend sometimes flags rejection inside a 200 body.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"優惠碼已過期"}`))
	})

	_, err := c.ApplyCoupon(context.Background(), "EXPIRED")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "優惠碼已過期", apiErr.Message)
}

func TestHTTPClient_PlaceOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v2/api/lumea/order", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"orderId":"X123","message":"已建立訂單"}`))
	})

	id, err := c.PlaceOrder(context.Background(), OrderRequest{
		Contact: orderContact(),
		Items:   []OrderItem{{ProductID: "prod-1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "X123", id)
}

func TestHTTPClient_PlaceOrder_MissingOrderID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	_, err := c.PlaceOrder(context.Background(), OrderRequest{Contact: orderContact()})
	require.Error(t, err)
}

func TestHTTPClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	c := NewHTTPClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	_, err := c.FetchCart(context.Background())
	require.Error(t, err)
	_, isAPI := AsAPIError(err)
	assert.False(t, isAPI, "timeout is a transport failure, not a backend rejection")
}

func TestHTTPClient_OpenBreakerIsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	// Five consecutive backend failures open the breaker.
	for i := 0; i < 5; i++ {
		_, err := c.FetchCart(context.Background())
		require.Error(t, err)
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	}

	_, err := c.FetchCart(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable), "open breaker classifies as unavailable")
	_, isAPI := AsAPIError(err)
	assert.False(t, isAPI, "open breaker is not a backend rejection")
}
