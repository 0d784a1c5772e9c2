package crawl

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// DomainLimiter paces outbound fetches per host. A crawl spanning several
// hosts (sitemap entries can point off the base host's subdomain) waits on
// each host's bucket independently.
type DomainLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*rate.Limiter
	perSecond float64
}

// NewDomainLimiter returns a limiter allowing perSecond requests to each
// host. Burst is fixed at 1 so requests to one host are evenly spaced.
func NewDomainLimiter(perSecond float64) *DomainLimiter {
	return &DomainLimiter{
		buckets:   make(map[string]*rate.Limiter),
		perSecond: perSecond,
	}
}

// Wait blocks until a request to host is allowed, or until ctx is canceled.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	return d.bucket(host).Wait(ctx)
}

func (d *DomainLimiter) bucket(host string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buckets[host]
	if !ok {
		b = rate.NewLimiter(rate.Limit(d.perSecond), 1)
		d.buckets[host] = b
	}
	return b
}
