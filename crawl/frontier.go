// Package crawl implements the breadth-first, same-origin web crawler that
// feeds the reindex pipeline.
package crawl

import (
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Frontier sizing defaults.
const (
	// frontierExpectedURLs sizes the Bloom filter for deduplication.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable dedup false positive
	// rate. A false positive skips a URL; it never fetches one twice.
	frontierFalsePositiveRate = 0.01
)

// queuedURL is one crawl frontier entry.
type queuedURL struct {
	URL   string
	Depth int
}

// Frontier is an in-memory FIFO crawl queue with Bloom-filter
// deduplication. FIFO ordering is what makes the crawl breadth-first:
// every URL at depth d drains before the first URL at depth d+1.
// It is safe for concurrent use.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.BloomFilter
	queue []queuedURL
}

// NewFrontier creates a Frontier sized for the default expected URL count.
func NewFrontier() *Frontier {
	return &Frontier{
		seen: bloom.NewWithEstimates(frontierExpectedURLs, frontierFalsePositiveRate),
	}
}

// Push enqueues a URL at the given depth. Returns false if the URL has
// already been seen. Fragments are stripped before deduplication, so URLs
// differing only by fragment count as duplicates.
func (f *Frontier) Push(rawURL string, depth int) bool {
	url := stripFragment(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen.TestString(url) {
		return false
	}
	f.seen.AddString(url)
	f.queue = append(f.queue, queuedURL{URL: url, Depth: depth})
	return true
}

// Pop dequeues the next URL in FIFO order.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", 0, false
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next.URL, next.Depth, true
}

// Len returns the number of URLs waiting in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen reports whether the URL has been queued or processed.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.TestString(stripFragment(rawURL))
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
