package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
)

const (
	msgTooManyRequests = "Too many requests"

	// visitorIdleTTL через сколько удаляется лимитер неактивного клиента
	visitorIdleTTL = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter token bucket на каждого клиента (по IP)
type RateLimiter struct {
	limit rate.Limit
	burst int

	// X-Forwarded-For учитывается только если запрос пришел от доверенного прокси
	trustedProxies []netip.Prefix

	mu          sync.Mutex
	visitors    map[string]*visitor
	lastCleanup time.Time
	now         func() time.Time

	logger Logger
}

// NewRateLimiter создает лимитер: rps запросов в секунду, burst запросов подряд
// Без trustedProxies клиент определяется только по RemoteAddr
func NewRateLimiter(rps float64, burst int, trustedProxies []netip.Prefix, logger Logger) *RateLimiter {
	return &RateLimiter{
		limit:          rate.Limit(rps),
		burst:          burst,
		trustedProxies: trustedProxies,
		visitors:       make(map[string]*visitor),
		now:            time.Now,
		logger:         logger,
	}
}

// Middleware отклоняет запрос с 429, если клиент исчерпал лимит
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.clientKey(r)
		if !rl.allow(key) {
			rl.logger.Warn("HTTP %s %s - Rate limit exceeded: client=%s", r.Method, r.URL.Path, key)
			handlers.RespondTooManyRequests(w, msgTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.cleanup(now)

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

// cleanup удаляет неактивных клиентов, вызывается под mu
func (rl *RateLimiter) cleanup(now time.Time) {
	if now.Sub(rl.lastCleanup) < visitorIdleTTL {
		return
	}
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) >= visitorIdleTTL {
			delete(rl.visitors, key)
		}
	}
	rl.lastCleanup = now
}

// clientKey IP клиента
// Заголовок X-Forwarded-For разбирается справа налево, доверенные прокси пропускаются
func (rl *RateLimiter) clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if !rl.isTrusted(host) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if _, err := netip.ParseAddr(hop); err != nil {
			break
		}
		if !rl.isTrusted(hop) {
			return hop
		}
	}
	return host
}

func (rl *RateLimiter) isTrusted(host string) bool {
	if len(rl.trustedProxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range rl.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
