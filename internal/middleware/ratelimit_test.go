package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, addr string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/wallet", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)
	h := rl.Limit(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1234"))
}

func TestRateLimiterTracksClientsIndependently(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	h := rl.Limit(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1234"))

	// a different client has its own bucket
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1234"))
}

func TestRateLimiterHandlesBareAddress(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	h := rl.Limit(okHandler())

	// no port to split; the raw address becomes the key
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.3"))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.3"))
}
