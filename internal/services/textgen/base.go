package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	xhttp "EcoTrack/pkg/http"
)

// ErrNotConfigured is returned when the client has no endpoint or key.
var ErrNotConfigured = errors.New("text generation client not configured")

// HTTPServiceBase centralizes client construction and authenticated JSON POSTs.
type HTTPServiceBase struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

// NewHTTPServiceBase builds a client for baseURL. The per-call deadline comes
// from the caller's context; timeout only bounds a single HTTP exchange.
func NewHTTPServiceBase(baseURL, apiKey string, timeout time.Duration) *HTTPServiceBase {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPServiceBase{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// PostJSON posts payload to path under baseURL and decodes the JSON reply into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	if b == nil || b.client == nil || b.baseURL == "" || b.apiKey == "" {
		return ErrNotConfigured
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    b.baseURL + path,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + b.apiKey,
		},
		Body: payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}
