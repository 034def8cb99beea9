package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// BidRateLimiter rejects over-eager bidders with 429 before a request ever
// reaches the bid processor; a limited request is a precondition failure, not
// a processor concern.
type BidRateLimiter struct {
	perMinute int

	mu       sync.Mutex
	limiters map[uint]*rate.Limiter
}

func NewBidRateLimiter(perMinute int) *BidRateLimiter {
	return &BidRateLimiter{
		perMinute: perMinute,
		limiters:  make(map[uint]*rate.Limiter),
	}
}

func (l *BidRateLimiter) limiterFor(bidderID uint) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[bidderID]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(float64(l.perMinute)/60.0), l.perMinute)
		l.limiters[bidderID] = limiter
	}

	return limiter
}

func (l *BidRateLimiter) Limit() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if l.perMinute <= 0 {
			ctx.Next()

			return
		}

		bidderID := ctx.GetUint(ContextKeyUserID)
		if !l.limiterFor(bidderID).Allow() {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many bids, slow down"})

			return
		}

		ctx.Next()
	}
}
