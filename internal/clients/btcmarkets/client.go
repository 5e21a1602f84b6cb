// Package btcmarkets implements the BTC Markets HTTP API client used as
// the exchange gateway. One exported method per logical exchange call;
// every method returns decoded, validated data or an *APIError.
package btcmarkets

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/getrepo/trade/pkg/retrier"
)

const DefaultBaseURL = "https://api.btcmarkets.net"

const (
	GET  = "GET"
	POST = "POST"
)

// APIError is returned when an exchange call fails: transport failure,
// undecodable payload, or a response with success=false.
type APIError struct {
	Method  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Method, e.Message)
}

func apiErrorf(method, format string, args ...interface{}) *APIError {
	return &APIError{Method: method, Message: fmt.Sprintf(format, args...)}
}

// Client talks to the BTC Markets REST API. Private endpoints are signed
// with HMAC-SHA512 over path, timestamp and body using the base64-decoded
// private key.
type Client struct {
	baseURL string
	key     string
	secret  []byte
	http    *http.Client
	retrier *retrier.Retrier
}

// New creates a Client. The private key is the base64 string issued by the
// exchange.
func New(baseURL, apiKey, privateKey string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	secret, err := base64.StdEncoding.DecodeString(privateKey)
	if err != nil {
		return nil, fmt.Errorf("private key is not valid base64: %w", err)
	}

	return &Client{
		baseURL: baseURL,
		key:     apiKey,
		secret:  secret,
		http:    &http.Client{Timeout: 30 * time.Second},
		retrier: retrier.New(
			retrier.WithMaxRetries(2),
			retrier.WithInitialInterval(500*time.Millisecond),
		),
	}, nil
}

func (c *Client) sign(path, timestamp, body string) string {
	mac := hmac.New(sha512.New, c.secret)
	mac.Write([]byte(path + "\n" + timestamp + "\n" + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// do performs one signed HTTP round trip. Transport errors are retried
// with backoff; anything the server actually answered is not.
func (c *Client) do(ctx context.Context, httpMethod, path string, body []byte) ([]byte, error) {
	return retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, httpMethod, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}

		timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("apikey", c.key)
		req.Header.Set("timestamp", timestamp)
		req.Header.Set("signature", c.sign(path, timestamp, string(body)))

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		return io.ReadAll(resp.Body)
	})
}

// request performs a call and decodes the JSON payload into result.
// method is the logical call name used in error reporting.
func (c *Client) request(ctx context.Context, method, httpMethod, path string, body, result interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return apiErrorf(method, "encode request: %v", err)
		}
	}

	data, err := c.do(ctx, httpMethod, path, payload)
	if err != nil {
		return apiErrorf(method, "%v", err)
	}

	if err := json.Unmarshal(data, result); err != nil {
		return apiErrorf(method, "decode response: %v", err)
	}
	return nil
}
