package sources

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// hostLimiter paces requests per host. A zero rate disables it.
type hostLimiter struct {
	perSec float64
	mu     sync.Mutex
	hosts  map[string]*rate.Limiter
}

func newHostLimiter(perSec float64) *hostLimiter {
	return &hostLimiter{perSec: perSec, hosts: make(map[string]*rate.Limiter)}
}

// Wait blocks until a request to rawURL's host is allowed or ctx is done.
func (l *hostLimiter) Wait(ctx context.Context, rawURL string) error {
	if l == nil || l.perSec <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	l.mu.Lock()
	lim, ok := l.hosts[u.Host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.perSec), 1)
		l.hosts[u.Host] = lim
	}
	l.mu.Unlock()
	return lim.Wait(ctx)
}
