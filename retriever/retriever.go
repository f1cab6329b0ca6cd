package retriever

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"store-auditor/document"
	"store-auditor/internal/types"
	"store-auditor/utils"
)

var tracer = otel.Tracer("store-auditor/retriever")

// Fetcher performs a single GET request
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Retriever fetches storefront markup through the configured fallback chain.
// Transports are tried one at a time in configuration order.
type Retriever struct {
	config  *types.Config
	logger  types.Logger
	fetcher Fetcher
	closer  func()
}

// New creates a retriever backed by utils.HTTPClient
func New(config *types.Config, logger types.Logger) *Retriever {
	client := utils.NewHTTPClient(config, logger)
	r := NewWithFetcher(config, logger, client)
	r.closer = client.Close
	return r
}

// NewWithFetcher creates a retriever that uses fetcher for every transport
func NewWithFetcher(config *types.Config, logger types.Logger, fetcher Fetcher) *Retriever {
	return &Retriever{
		config:  config,
		logger:  logger,
		fetcher: fetcher,
	}
}

// Retrieve normalizes rawURL and returns the parsed page of the first transport that yields usable markup.
// The returned page's URL is the normalized URL.
func (r *Retriever) Retrieve(ctx context.Context, rawURL string) (*document.Page, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	if len(r.config.Transports) == 0 {
		return nil, &types.RetrievalError{Reason: types.ReasonNetwork, Err: errors.New("no transports configured")}
	}

	var last *attemptError
	attempts := 0
	for i, transport := range r.config.Transports {
		attempts++
		r.logger.Debugf("Fetching %s via %s (attempt %d/%d)", target, transport.Name, i+1, len(r.config.Transports))

		page, err := r.attempt(ctx, i, transport, target)
		if err == nil {
			r.logger.Infof("Retrieved %s via %s", target, transport.Name)
			return page, nil
		}
		if errors.Is(err, types.ErrParse) {
			return nil, err
		}

		if !errors.As(err, &last) {
			last = &attemptError{reason: types.ReasonNetwork, err: err}
		}
		r.logger.Warnf("Transport %s failed for %s (%s): %v", transport.Name, target, last.reason, last.err)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, &types.RetrievalError{Reason: last.reason, Attempts: attempts, Err: last.err}
}

func (r *Retriever) attempt(ctx context.Context, index int, transport types.Transport, target string) (*document.Page, error) {
	timeout := r.config.AttemptTimeout(index)
	ctx, span := tracer.Start(ctx, "retriever:attempt", trace.WithAttributes(
		attribute.String("transport", transport.Name),
		attribute.Int("index", index),
		attribute.String("timeout", timeout.String()),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := r.fetch(ctx, transport, target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "attempt failed")
	}
	return page, err
}

func (r *Retriever) fetch(ctx context.Context, transport types.Transport, target string) (*document.Page, error) {
	started := time.Now()
	body, err := r.fetcher.Get(ctx, BuildEndpoint(transport.Endpoint, target))
	if err != nil {
		return nil, classifyFetchError(ctx, err)
	}
	r.logger.Debugf("Transport %s returned %d bytes in %v", transport.Name, len(body), time.Since(started))

	markup, err := Unwrap(body, transport.Envelope)
	if err != nil {
		return nil, err
	}
	if IsErrorPage(markup) {
		return nil, failure(types.ReasonProxyErrorPage, "response from %s looks like an error page", transport.Name)
	}

	page, err := document.Parse(markup, target)
	if err != nil {
		return nil, err
	}
	if page.IsEmpty() {
		return nil, failure(types.ReasonEmptyResponse, "document from %s has no content", transport.Name)
	}
	return page, nil
}

func classifyFetchError(ctx context.Context, err error) *attemptError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &attemptError{reason: types.ReasonTimeout, err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &attemptError{reason: types.ReasonTimeout, err: err}
	default:
		return &attemptError{reason: types.ReasonNetwork, err: fmt.Errorf("fetch failed: %w", err)}
	}
}

// Close cleans up resources
func (r *Retriever) Close() {
	if r.closer != nil {
		r.closer()
	}
}
