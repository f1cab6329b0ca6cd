package utils

import (
	"context"
	"fmt"
	"io"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"store-auditor/internal/types"
)

// StatusError is returned for non-2xx upstream responses
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// HTTPClient performs single GET requests for the retrieval transports.
// It never retries; the fallback chain decides what happens after a failure.
type HTTPClient struct {
	client *resty.Client
	config *types.Config
	logger types.Logger
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(config *types.Config, logger types.Logger) *HTTPClient {
	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	client.SetHeaders(map[string]string{
		"User-Agent":                config.UserAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.8,*/*;q=0.7",
		"Accept-Language":           "en-US,en;q=0.5",
		"Upgrade-Insecure-Requests": "1",
	})
	client.SetDoNotParseResponse(true)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetContext(context.WithValue(req.Context(), startedAtKey{}, time.Now()))
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		started, _ := res.Request.Context().Value(startedAtKey{}).(time.Time)
		logger.Debugf("GET %s -> %d in %v", res.Request.URL, res.StatusCode(), time.Since(started))
		return nil
	})

	return &HTTPClient{
		client: client,
		config: config,
		logger: logger,
	}
}

type startedAtKey struct{}

// Get performs a GET request and returns the response body.
// The body is truncated to config.MaxBodyBytes.
func (h *HTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := h.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return nil, &StatusError{Code: resp.StatusCode()}
	}

	reader := io.Reader(body)
	if h.config.MaxBodyBytes > 0 {
		reader = io.LimitReader(body, h.config.MaxBodyBytes)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	h.logger.Debugf("Successfully retrieved %d bytes from %s", len(data), url)
	return data, nil
}

// Close cleans up resources
func (h *HTTPClient) Close() {
	h.client.GetClient().CloseIdleConnections()
}
