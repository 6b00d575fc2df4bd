package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/knowx/knowx-back/internal/auth"
)

// AuthMiddleware validates JWT tokens and sets the user id in context.
// A missing token is 401, a token that does not verify is 403.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)
		if !found || tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		userID, err := auth.UserIDFromClaims(claims)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

const requestIDHeader = "X-Request-ID"

// RequestID propagates or assigns an X-Request-ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// limiterIdle is how long an unused bucket is kept. A bucket idle longer than
// its refill time is full again, so dropping it does not change behaviour.
const limiterIdle = 10 * time.Minute

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// limiterPool hands out one token bucket per key and drops idle ones
type limiterPool struct {
	mu        sync.Mutex
	m         map[string]*limiterEntry
	rps       float64
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	if rps <= 0 {
		rps = 2
	}
	if burst <= 0 {
		burst = 10
	}
	idle := limiterIdle
	if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
		idle = refill
	}
	return &limiterPool{
		m:     make(map[string]*limiterEntry),
		rps:   rps,
		burst: burst,
		idle:  idle,
		now:   time.Now,
	}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if now.Sub(p.lastSweep) >= p.idle {
		for k, e := range p.m {
			if now.Sub(e.seen) >= p.idle {
				delete(p.m, k)
			}
		}
		p.lastSweep = now
	}

	if e, ok := p.m[key]; ok {
		e.seen = now
		return e.lim
	}
	l := rate.NewLimiter(rate.Limit(p.rps), p.burst)
	p.m[key] = &limiterEntry{lim: l, seen: now}
	return l
}

func (p *limiterPool) Allow(key string) bool {
	return p.get(key).Allow()
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}

// SendRateLimit throttles message submission per authenticated sender.
// Must run after AuthMiddleware.
func SendRateLimit(rps float64, burst int) gin.HandlerFunc {
	pool := newLimiterPool(rps, burst)
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			c.Next()
			return
		}
		if !pool.Allow(strconv.FormatInt(userID, 10)) {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many messages, slow down"})
			c.Abort()
			return
		}
		c.Next()
	}
}
