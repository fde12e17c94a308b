package upstream

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lumea/checkout-bff/internal/domain/cart"
	"github.com/lumea/checkout-bff/internal/domain/order"
)

// maxResponseBytes bounds how much of an upstream response is read.
const maxResponseBytes = 1 << 20

// Config holds the connection settings for the storefront API. BaseURL and
// Path carry the version/base prefix as configuration, not logic.
type Config struct {
	// BaseURL is the scheme+host of the storefront API.
	BaseURL string
	// Path is the API prefix, e.g. "/v2/api/lumea-skincare".
	Path string
	// Timeout bounds every single call, mutations included. A timed-out
	// mutation is handled exactly like any other request failure.
	Timeout time.Duration
}

// HTTPClient is the production Client implementation. Outgoing requests are
// traced via otelhttp and guarded by a circuit breaker so a dead backend
// fails fast instead of stacking up timeouts.
type HTTPClient struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds an HTTPClient from cfg.
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Path != "" && !strings.HasPrefix(cfg.Path, "/") {
		cfg.Path = "/" + cfg.Path
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "storefront-api",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// Backend rejections (invalid coupon, validation) are healthy
			// responses; only transport and server errors trip the breaker.
			if apiErr, ok := AsAPIError(err); ok {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return false
		},
	})

	return &HTTPClient{
		cfg: cfg,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
	}
}

// do performs one bounded request through the breaker and returns the
// response body. Non-2xx responses become *APIError carrying the backend's
// message.
func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	data, err := c.breaker.Execute(func() ([]byte, error) {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+c.cfg.Path+path, rd)
		if err != nil {
			return nil, errors.Wrap(err, "build request")
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, errors.Wrap(ErrUnavailable, err.Error())
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, errors.Wrap(err, "read response")
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			msg := ""
			if env, envErr := decodeMessageEnvelope(data); envErr == nil {
				msg = env.Message
			}
			return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
		}
		return data, nil
	})
	// An open (or throttled half-open) breaker never reached the backend;
	// classify it like any other unreachable-storefront condition.
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	return data, err
}

// checkSuccess guards against backends that flag failures inside a 200 body.
func checkSuccess(data []byte) error {
	env, err := decodeMessageEnvelope(data)
	if err != nil {
		return err
	}
	if !env.Success {
		return &APIError{StatusCode: http.StatusBadRequest, Message: env.Message}
	}
	return nil
}

func (c *HTTPClient) FetchCart(ctx context.Context) (cart.Cart, error) {
	data, err := c.do(ctx, http.MethodGet, "/cart", nil)
	if err != nil {
		return cart.Cart{}, err
	}
	return decodeCartEnvelope(data)
}

func (c *HTTPClient) AddCartItem(ctx context.Context, productID string, qty int) error {
	data, err := c.do(ctx, http.MethodPost, "/cart", encodeCartItem(productID, qty))
	if err != nil {
		return err
	}
	return checkSuccess(data)
}

func (c *HTTPClient) UpdateCartItem(ctx context.Context, itemID, productID string, qty int) error {
	data, err := c.do(ctx, http.MethodPut, "/cart/"+itemID, encodeCartItem(productID, qty))
	if err != nil {
		return err
	}
	return checkSuccess(data)
}

func (c *HTTPClient) RemoveCartItem(ctx context.Context, itemID string) error {
	data, err := c.do(ctx, http.MethodDelete, "/cart/"+itemID, nil)
	if err != nil {
		return err
	}
	return checkSuccess(data)
}

func (c *HTTPClient) ApplyCoupon(ctx context.Context, code string) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/coupon", encodeCoupon(code))
	if err != nil {
		return "", err
	}
	env, err := decodeMessageEnvelope(data)
	if err != nil {
		return "", err
	}
	if !env.Success {
		return "", &APIError{StatusCode: http.StatusBadRequest, Message: env.Message}
	}
	return env.Message, nil
}

func (c *HTTPClient) PlaceOrder(ctx context.Context, req OrderRequest) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/order", encodeOrder(req))
	if err != nil {
		return "", err
	}
	env, err := decodeMessageEnvelope(data)
	if err != nil {
		return "", err
	}
	if !env.Success {
		return "", &APIError{StatusCode: http.StatusBadRequest, Message: env.Message}
	}
	if env.OrderID == "" {
		return "", errors.New("order id missing from response")
	}
	return env.OrderID, nil
}

func (c *HTTPClient) FetchOrder(ctx context.Context, orderID string) (*order.Order, error) {
	data, err := c.do(ctx, http.MethodGet, "/order/"+orderID, nil)
	if err != nil {
		return nil, err
	}
	return decodeOrderEnvelope(data)
}

// Ping reports whether the storefront API answers at all; used by the
// readiness probe.
func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.FetchCart(ctx)
	return err
}
