package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"whoowns/internal/errors"
)

const (
	// DefaultVerifyTimeout bounds a single existence check
	DefaultVerifyTimeout = 5 * time.Second

	// DefaultCacheTTL is how long a verification result stays fresh.
	// Existence checks are slow and rate-limited, so results are cached
	// and never consulted on the resolution path itself.
	DefaultCacheTTL = time.Hour

	// DefaultMaxConcurrent bounds in-flight verification requests
	DefaultMaxConcurrent = 4
)

// VerifierConfig controls the verification client
type VerifierConfig struct {
	BaseURL       string // e.g. "https://api.github.com/users"
	CacheTTL      time.Duration
	MaxConcurrent int
	Client        *http.Client // nil means a default client with timeout
}

type cacheEntry struct {
	exists  bool
	checked time.Time
}

// Verifier checks whether canonical handles exist on the host platform.
// Used by the assignment workflow only; resolution never blocks on it.
type Verifier struct {
	baseURL       string
	client        *http.Client
	ttl           time.Duration
	maxConcurrent int

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewVerifier creates a verification client
func NewVerifier(cfg VerifierConfig) *Verifier {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultVerifyTimeout}
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	return &Verifier{
		baseURL:       cfg.BaseURL,
		client:        client,
		ttl:           ttl,
		maxConcurrent: maxConcurrent,
		cache:         make(map[string]cacheEntry),
	}
}

// Exists reports whether a handle exists on the platform, consulting the
// cache first. 200 means yes, 404 means no, anything else is an error.
func (v *Verifier) Exists(ctx context.Context, handle string) (bool, error) {
	v.mu.Lock()
	entry, ok := v.cache[handle]
	v.mu.Unlock()
	if ok && time.Since(entry.checked) < v.ttl {
		return entry.exists, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		v.baseURL+"/"+url.PathEscape(handle), nil)
	if err != nil {
		return false, errors.Wrap(errors.VerifyFailed, "building verification request", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false, errors.Wrap(errors.VerifyFailed, "verification request failed", err).
			WithDetails(map[string]interface{}{"handle": handle})
	}
	defer func() { _ = resp.Body.Close() }()

	var exists bool
	switch resp.StatusCode {
	case http.StatusOK:
		exists = true
	case http.StatusNotFound:
		exists = false
	default:
		return false, errors.New(errors.VerifyFailed,
			fmt.Sprintf("unexpected verification status %d", resp.StatusCode)).
			WithDetails(map[string]interface{}{"handle": handle})
	}

	v.mu.Lock()
	v.cache[handle] = cacheEntry{exists: exists, checked: time.Now()}
	v.mu.Unlock()

	return exists, nil
}

// ExistsBatch verifies a set of handles with bounded concurrency.
// The first hard failure cancels the remaining checks.
func (v *Verifier) ExistsBatch(ctx context.Context, handles []string) (map[string]bool, error) {
	results := make(map[string]bool, len(handles))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.maxConcurrent)

	for _, handle := range handles {
		g.Go(func() error {
			exists, err := v.Exists(gctx, handle)
			if err != nil {
				return err
			}
			mu.Lock()
			results[handle] = exists
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
