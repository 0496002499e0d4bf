package client

import (
	"context"
	"sync"
	"time"

	"github.com/jpillora/backoff"
)

const minRetryWait = 500 * time.Millisecond

// ResponseFeed keeps the latest page of the responses list and re-reads
// it on demand or on a fixed interval.
type ResponseFeed struct {
	client *Client
	query  ResponseQuery

	// OnUpdate, when set, is called after a refresh changed the page.
	OnUpdate func(ResponsePage)

	mu      sync.RWMutex
	page    ResponsePage
	loaded  bool
	updated time.Time
}

func NewResponseFeed(c *Client, q ResponseQuery) *ResponseFeed {
	return &ResponseFeed{client: c, query: q}
}

// Snapshot returns the page currently displayed and when it last changed.
func (f *ResponseFeed) Snapshot() (ResponsePage, time.Time) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.page, f.updated
}

// Refresh re-issues the list read. The held page is replaced only when
// the result differs; on error it is left untouched.
func (f *ResponseFeed) Refresh(ctx context.Context) (bool, error) {
	page, err := f.client.ListResponses(ctx, f.query)
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	changed := !f.loaded || !samePage(f.page, page)
	if changed {
		f.page = page
		f.loaded = true
		f.updated = time.Now()
	}
	f.mu.Unlock()

	if changed && f.OnUpdate != nil {
		f.OnUpdate(page)
	}
	return changed, nil
}

// Run refreshes immediately and then every interval until ctx is done.
// Network failures are retried with backoff; any other failure ends the
// loop and is returned.
func (f *ResponseFeed) Run(ctx context.Context, interval time.Duration) error {
	if err := f.refreshWithRetry(ctx, interval); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := f.refreshWithRetry(ctx, interval); err != nil {
				return err
			}
		}
	}
}

func (f *ResponseFeed) refreshWithRetry(ctx context.Context, interval time.Duration) error {
	maxWait := interval
	if maxWait < minRetryWait {
		maxWait = minRetryWait
	}
	b := &backoff.Backoff{
		Min:    minRetryWait,
		Max:    maxWait,
		Factor: 2,
		Jitter: true,
	}

	for {
		_, err := f.Refresh(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) || ctx.Err() != nil {
			return err
		}

		timer := time.NewTimer(b.Duration())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func samePage(a, b ResponsePage) bool {
	if a.Count != b.Count || len(a.Results) != len(b.Results) {
		return false
	}
	for i := range a.Results {
		if a.Results[i].ID != b.Results[i].ID {
			return false
		}
	}
	return true
}
