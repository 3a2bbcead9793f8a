package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{Attempts: attempts, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Run("success with headers", func(t *testing.T) {
		var got http.Header
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			_, _ = w.Write([]byte("<html>page</html>"))
		}))
		defer ts.Close()

		f := New(Config{
			Timeout:        time.Second,
			UserAgent:      "test-agent",
			AcceptLanguage: "zh-CN,zh;q=0.9",
			Referer:        "https://www.binance.com/",
			Headers:        map[string]string{"X-Extra": "1"},
			Retry:          fastRetry(3),
		})
		body, err := f.Fetch(context.Background(), ts.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html>page</html>", string(body))

		assert.Equal(t, "test-agent", got.Get("User-Agent"))
		assert.Equal(t, "zh-CN,zh;q=0.9", got.Get("Accept-Language"))
		assert.Equal(t, "https://www.binance.com/", got.Get("Referer"))
		assert.Equal(t, "1", got.Get("X-Extra"))
		assert.Contains(t, got.Get("Accept"), "text/html")
	})

	t.Run("default user agent", func(t *testing.T) {
		var ua string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.UserAgent()
		}))
		defer ts.Close()

		_, err := New(Config{Retry: fastRetry(1)}).Fetch(context.Background(), ts.URL)
		require.NoError(t, err)
		assert.Equal(t, DefaultUserAgent, ua)
	})

	t.Run("transient errors retried until success", func(t *testing.T) {
		var calls int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch atomic.AddInt32(&calls, 1) {
			case 1:
				w.WriteHeader(http.StatusBadGateway)
			case 2:
				w.WriteHeader(http.StatusServiceUnavailable)
			case 3:
				w.WriteHeader(http.StatusGatewayTimeout)
			default:
				_, _ = w.Write([]byte("ok"))
			}
		}))
		defer ts.Close()

		body, err := New(Config{Retry: fastRetry(5)}).Fetch(context.Background(), ts.URL)
		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
		assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	})

	t.Run("retry budget exhausted", func(t *testing.T) {
		var calls int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer ts.Close()

		body, err := New(Config{Retry: fastRetry(5)}).Fetch(context.Background(), ts.URL)
		require.Error(t, err)
		assert.Nil(t, body)
		assert.Equal(t, int32(5), atomic.LoadInt32(&calls))

		var serr *StatusError
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, http.StatusBadGateway, serr.Code)
		assert.Contains(t, err.Error(), "after 5 attempt(s)")
	})

	t.Run("non transient status not retried", func(t *testing.T) {
		for _, code := range []int{http.StatusInternalServerError, http.StatusNotFound, http.StatusForbidden} {
			var calls int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(code)
			}))

			body, err := New(Config{Retry: fastRetry(5)}).Fetch(context.Background(), ts.URL)
			require.Error(t, err)
			assert.Nil(t, body)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "code %d", code)

			var serr *StatusError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, code, serr.Code)
			ts.Close()
		}
	})

	t.Run("custom transient set", func(t *testing.T) {
		var calls int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte("ok"))
		}))
		defer ts.Close()

		retry := fastRetry(3)
		retry.Statuses = []int{http.StatusInternalServerError}
		body, err := New(Config{Retry: retry}).Fetch(context.Background(), ts.URL)
		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("timeout", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer ts.Close()

		body, err := New(Config{Timeout: 10 * time.Millisecond, Retry: fastRetry(2)}).Fetch(context.Background(), ts.URL)
		require.Error(t, err)
		assert.Nil(t, body)
	})

	t.Run("invalid url", func(t *testing.T) {
		body, err := New(Config{}).Fetch(context.Background(), "not-a-valid-url")
		require.Error(t, err)
		assert.Nil(t, body)
		assert.Contains(t, err.Error(), "invalid URL")
	})

	t.Run("custom client", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("custom"))
		}))
		defer ts.Close()

		f := New(Config{Retry: fastRetry(1)}, WithClient(ts.Client()))
		body, err := f.Fetch(context.Background(), ts.URL)
		require.NoError(t, err)
		assert.Equal(t, "custom", string(body))
	})
}
