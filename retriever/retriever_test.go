package retriever

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"store-auditor/internal/types"
)

const storeHTML = `<html><head><title>Acme Store</title></head><body>
<header><nav><a href="/collections/shoes">Shoes</a></nav></header>
<main><div class="product"><span class="price">$19.99</span><button>Add to cart</button></div></main>
</body></html>`

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"example.com", "https://example.com"},
		{"  example.com/  ", "https://example.com"},
		{"http://shop.example.com//", "http://shop.example.com"},
		{"https://example.com/collections/all/", "https://example.com/collections/all"},
	}

	for _, tt := range tests {
		got, err := NormalizeURL(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalizeURL_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "ftp://example.com", "https://", "not a url", "intranet"} {
		_, err := NormalizeURL(input)
		assert.ErrorIs(t, err, types.ErrInvalidURLFormat, input)
	}
}

func TestNormalizeURL_LocalRejected(t *testing.T) {
	for _, input := range []string{
		"localhost",
		"http://localhost:3000",
		"127.0.0.1",
		"10.0.0.8",
		"172.31.1.1",
		"192.168.1.20/shop",
		"http://[::1]:8080",
		"0.0.0.0",
	} {
		_, err := NormalizeURL(input)
		assert.ErrorIs(t, err, types.ErrLocalURLRejected, input)
	}
}

func TestBuildEndpoint(t *testing.T) {
	assert.Equal(t, "https://example.com", BuildEndpoint("{raw}", "https://example.com"))
	assert.Equal(t,
		"https://proxy.test/get?url=https%3A%2F%2Fexample.com%2Fa%3Fb%3Dc",
		BuildEndpoint("https://proxy.test/get?url={url}", "https://example.com/a?b=c"))
}

func TestIsErrorPage(t *testing.T) {
	assert.True(t, IsErrorPage("<html><body><h1>404 Not Found</h1></body></html>"))
	assert.True(t, IsErrorPage("<html><body>Proxy Error: upstream closed</body></html>"))
	assert.True(t, IsErrorPage("<h1>Access denied</h1>"))

	// store signals win over error phrases
	assert.False(t, IsErrorPage(`<h1>404</h1><a href="/products/mug">Mug</a><button>Add to cart</button>`))
	// long documents are never treated as error pages
	assert.False(t, IsErrorPage("<p>not found</p>"+strings.Repeat("<p>lorem ipsum</p>", 400)))
	assert.False(t, IsErrorPage(storeHTML))
}

func TestUnwrap(t *testing.T) {
	markup, err := Unwrap([]byte(`{"contents":"<html><body>hi</body></html>","status":{"http_code":200}}`), types.EnvelopeJSON)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>hi</body></html>", markup)

	markup, err = Unwrap([]byte(`{"data":{"html":"<p>nested</p>"}}`), types.EnvelopeAuto)
	require.NoError(t, err)
	assert.Equal(t, "<p>nested</p>", markup)

	markup, err = Unwrap([]byte("<html>raw</html>"), types.EnvelopeAuto)
	require.NoError(t, err)
	assert.Equal(t, "<html>raw</html>", markup)
}

func TestUnwrap_Failures(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		envelope types.Envelope
		reason   types.FailureReason
	}{
		{"empty body", "   ", types.EnvelopeAuto, types.ReasonEmptyResponse},
		{"not json", "<html></html>", types.EnvelopeJSON, types.ReasonInvalidResponse},
		{"unknown keys", `{"foo":"bar"}`, types.EnvelopeJSON, types.ReasonInvalidResponse},
		{"null contents", `{"contents":null}`, types.EnvelopeJSON, types.ReasonEmptyResponse},
		{"blank contents", `{"contents":"  "}`, types.EnvelopeAuto, types.ReasonEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unwrap([]byte(tt.body), tt.envelope)
			var attemptErr *attemptError
			require.ErrorAs(t, err, &attemptErr)
			assert.Equal(t, tt.reason, attemptErr.reason)
		})
	}
}

func newTestConfig(transports ...types.Transport) *types.Config {
	config := types.DefaultConfig()
	config.Transports = transports
	return config
}

func TestRetrieve_FallsBackInOrder(t *testing.T) {
	var order []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, r.URL.Path)
		switch r.URL.Path {
		case "/broken":
			w.WriteHeader(http.StatusBadGateway)
		case "/errorpage":
			w.Write([]byte("<html><body>Proxy error</body></html>"))
		case "/envelope":
			assert.Equal(t, "https://example.com", r.URL.Query().Get("url"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"contents":` + quote(storeHTML) + `}`))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	}))
	defer server.Close()

	config := newTestConfig(
		types.Transport{Name: "broken", Endpoint: server.URL + "/broken?url={url}", Envelope: types.EnvelopeAuto},
		types.Transport{Name: "errorpage", Endpoint: server.URL + "/errorpage?url={url}", Envelope: types.EnvelopeRaw},
		types.Transport{Name: "envelope", Endpoint: server.URL + "/envelope?url={url}", Envelope: types.EnvelopeJSON},
		types.Transport{Name: "never", Endpoint: server.URL + "/never", Envelope: types.EnvelopeRaw},
	)
	r := New(config, logrus.New())
	defer r.Close()

	page, err := r.Retrieve(context.Background(), "example.com/")

	require.NoError(t, err)
	assert.Equal(t, "https://example.com", page.URL)
	assert.Equal(t, "Acme Store", page.Find("title").Text())
	assert.Equal(t, []string{"/broken", "/errorpage", "/envelope"}, order)
}

func TestRetrieve_ExhaustedReportsLastReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"contents":""}`))
	}))
	defer server.Close()

	config := newTestConfig(
		types.Transport{Name: "down", Endpoint: server.URL + "/down", Envelope: types.EnvelopeRaw},
		types.Transport{Name: "empty", Endpoint: server.URL + "/empty", Envelope: types.EnvelopeJSON},
	)
	r := New(config, logrus.New())
	defer r.Close()

	_, err := r.Retrieve(context.Background(), "https://example.com")

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrRetrievalExhausted)
	var retrievalErr *types.RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.Equal(t, types.ReasonEmptyResponse, retrievalErr.Reason)
	assert.Equal(t, 2, retrievalErr.Attempts)
	assert.Equal(t, types.ReasonEmptyResponse.UserMessage(), types.UserMessage(err))
}

func TestRetrieve_TimeoutPerAttempt(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	config := newTestConfig(
		types.Transport{Name: "slow", Endpoint: server.URL, Envelope: types.EnvelopeRaw, Timeout: 50 * time.Millisecond},
	)
	r := New(config, logrus.New())
	defer r.Close()

	started := time.Now()
	_, err := r.Retrieve(context.Background(), "example.com")

	var retrievalErr *types.RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.Equal(t, types.ReasonTimeout, retrievalErr.Reason)
	assert.Less(t, time.Since(started), 5*time.Second)
}

type countingFetcher struct {
	calls   int32
	inFlight int32
	maxSeen int32
	body    []byte
	err     error
}

func (f *countingFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	if n > atomic.LoadInt32(&f.maxSeen) {
		atomic.StoreInt32(&f.maxSeen, n)
	}
	time.Sleep(5 * time.Millisecond)
	return f.body, f.err
}

func TestRetrieve_AttemptsAreSequential(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("connection refused")}
	config := newTestConfig(
		types.Transport{Name: "a", Endpoint: "{raw}", Envelope: types.EnvelopeRaw},
		types.Transport{Name: "b", Endpoint: "{raw}", Envelope: types.EnvelopeRaw},
		types.Transport{Name: "c", Endpoint: "{raw}", Envelope: types.EnvelopeRaw},
	)
	r := NewWithFetcher(config, logrus.New(), fetcher)

	_, err := r.Retrieve(context.Background(), "example.com")

	var retrievalErr *types.RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.Equal(t, types.ReasonNetwork, retrievalErr.Reason)
	assert.Equal(t, int32(3), fetcher.calls)
	assert.Equal(t, int32(1), fetcher.maxSeen)
}

func TestRetrieve_RejectsEmptyDocument(t *testing.T) {
	fetcher := &countingFetcher{body: []byte("<html><head></head><body></body></html>")}
	r := NewWithFetcher(newTestConfig(types.Transport{Name: "a", Endpoint: "{raw}", Envelope: types.EnvelopeRaw}), logrus.New(), fetcher)

	_, err := r.Retrieve(context.Background(), "example.com")

	var retrievalErr *types.RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.Equal(t, types.ReasonEmptyResponse, retrievalErr.Reason)
}

func TestRetrieve_InvalidURLStopsBeforeFetching(t *testing.T) {
	fetcher := &countingFetcher{}
	r := NewWithFetcher(newTestConfig(types.Transport{Name: "a", Endpoint: "{raw}"}), logrus.New(), fetcher)

	_, err := r.Retrieve(context.Background(), "http://192.168.0.1")

	assert.ErrorIs(t, err, types.ErrLocalURLRejected)
	assert.Equal(t, int32(0), fetcher.calls)
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}
