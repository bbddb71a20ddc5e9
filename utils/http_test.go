package utils

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cart-extractor/internal/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func fastConfig() *types.Config {
	config := types.DefaultConfig()
	config.RequestDelay = 10 * time.Millisecond
	return config
}

func TestNewHTTPClient(t *testing.T) {
	config := types.DefaultConfig()
	logger := newTestLogger()

	client := NewHTTPClient(config, logger)

	assert.NotNil(t, client)
	assert.Equal(t, config, client.config)
	assert.Equal(t, logger, client.logger)
	assert.NotNil(t, client.client)
	assert.NotNil(t, client.limiter)

	client.Close()
}

func TestHTTPClient_GetPageContent(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<div class="cart-item">Desk Lamp</div>`))
	}))
	defer server.Close()

	config := fastConfig()
	client := NewHTTPClient(config, newTestLogger())
	defer client.Close()

	html, err := client.GetPageContent(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, `<div class="cart-item">Desk Lamp</div>`, html)
	assert.Equal(t, config.UserAgent, userAgent)
}

func TestHTTPClient_Get_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("cart"))
	}))
	defer server.Close()

	client := NewHTTPClient(fastConfig(), newTestLogger())
	defer client.Close()

	body, err := client.Get(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "cart", string(body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPClient_Get_NotFound(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	config := fastConfig()
	config.MaxRetries = 1
	client := NewHTTPClient(config, newTestLogger())
	defer client.Close()

	_, err := client.Get(context.Background(), server.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 404")
	assert.Contains(t, err.Error(), "all retry attempts failed")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPClient_Get_ContextCancelled(t *testing.T) {
	config := types.DefaultConfig()
	config.RequestDelay = 100 * time.Millisecond
	client := NewHTTPClient(config, newTestLogger())
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "http://example.com")

	assert.Equal(t, context.Canceled, err)
}

func TestHTTPClient_Close(t *testing.T) {
	client := NewHTTPClient(types.DefaultConfig(), newTestLogger())

	assert.NotPanics(t, client.Close)
}
