package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"xdrive-driver/internal/driver-client/core/myerrors"
	"xdrive-driver/internal/mylogger"

	"github.com/google/uuid"
)

// TokenFunc supplies the current session token, or "" when logged out.
// Injected so the gateway never depends on the session service.
type TokenFunc func() string

// Gateway is the single chokepoint for authenticated HTTP calls. It applies
// the JSON content type, the bearer header when a token exists, a request
// id, the configured timeout, and normalizes every failure to a
// myerrors.Error kind.
type Gateway struct {
	baseURL       string
	client        *http.Client
	retryAttempts int
	token         TokenFunc
	mylog         mylogger.Logger
}

func NewGateway(baseURL string, timeout time.Duration, retryAttempts int, token TokenFunc, mylog mylogger.Logger) *Gateway {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		retryAttempts: retryAttempts,
		token:         token,
		mylog:         mylog,
	}
}

// Do performs one API request and returns the raw response body. Retries
// apply to transport-level failures of GET requests only; writes are never
// replayed.
func (g *Gateway) Do(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, myerrors.Wrap(myerrors.KindInvalidInput, "marshaling request body", err)
		}
		payload = data
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = g.retryAttempts
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		data, err := g.do(ctx, method, endpoint, payload)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !myerrors.IsKind(err, myerrors.KindNetwork) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
		if i < attempts-1 {
			g.mylog.Warn("retrying request", "method", method, "endpoint", endpoint, "attempt", i+1)
		}
	}
	return nil, lastErr
}

func (g *Gateway) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+endpoint, reader)
	if err != nil {
		return nil, myerrors.Wrap(myerrors.KindInvalidInput, "creating request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := g.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, myerrors.Wrap(myerrors.KindNetwork, "network request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, myerrors.Wrap(myerrors.KindNetwork, "reading response", err)
	}

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, g.normalizeFailure(resp.StatusCode, isJSON, data)
	}

	return data, nil
}

// normalizeFailure converts a non-2xx response into a typed error carrying
// the server-provided message when one exists.
func (g *Gateway) normalizeFailure(status int, isJSON bool, data []byte) error {
	message := ""
	if isJSON {
		var body struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &body); err == nil {
			message = body.Message
		}
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}

	kind := myerrors.KindServer
	if status == http.StatusUnauthorized {
		kind = myerrors.KindAuth
	}

	return &myerrors.Error{Kind: kind, Message: message, Status: status}
}

// Download fetches an absolute URL (e.g. a voucher reference) with the
// bearer header, bypassing the JSON conventions.
func (g *Gateway) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, myerrors.Wrap(myerrors.KindInvalidInput, "creating request", err)
	}
	if token := g.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, myerrors.Wrap(myerrors.KindNetwork, "network request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &myerrors.Error{
			Kind:    myerrors.KindServer,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status),
			Status:  resp.StatusCode,
		}
	}

	return io.ReadAll(resp.Body)
}
