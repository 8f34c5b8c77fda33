package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
	"github.com/vaughan-dsouza/campdirectory/internal/response"
)

// RateLimit applies a coarse per-client limit of max requests per window,
// keyed by remote IP. Limiters for idle clients are dropped after two
// windows to keep the map bounded.
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		clients = map[string]*client{}
	)

	if max < 1 {
		max = 1
	}
	limit := rate.Every(window / time.Duration(max))

	cleanup := func(now time.Time) {
		for ip, c := range clients {
			if now.Sub(c.lastSeen) > 2*window {
				delete(clients, ip)
			}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			mu.Lock()
			c, ok := clients[ip]
			if !ok {
				c = &client{limiter: rate.NewLimiter(limit, max)}
				clients[ip] = c
			}
			now := time.Now()
			c.lastSeen = now
			if len(clients) > 10000 {
				cleanup(now)
			}
			allowed := c.limiter.Allow()
			mu.Unlock()

			if !allowed {
				response.Error(w, apperr.New(http.StatusTooManyRequests, "Too many requests, please try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
