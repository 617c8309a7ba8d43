package compiler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/hcl/v2"

	"github.com/vk/hotpanel/internal/ctxlog"
	"github.com/vk/hotpanel/internal/model"
	"github.com/vk/hotpanel/internal/schema"
)

// DefaultTimeout is the compile budget used when the caller configures none.
const DefaultTimeout = 10 * time.Second

const defaultCacheSize = 256

// DecodeFunc turns (path, source) into a component or diagnostics. The
// default is schema.Decode; tests and alternate source formats may swap it.
type DecodeFunc func(path string, source string) (*schema.Component, hcl.Diagnostics)

// Result is the outcome of one compile attempt.
type Result struct {
	Success   bool
	Component *schema.Component
	Err       error
	Kind      model.ErrorKind
	Duration  time.Duration
}

// Compiler resolves panel source within a bounded time budget. It is safe for
// concurrent use.
type Compiler struct {
	timeout time.Duration
	decode  DecodeFunc
	cache   *lru.Cache[string, *schema.Component]
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithDecodeFunc replaces the default HCL decoder.
func WithDecodeFunc(fn DecodeFunc) Option {
	return func(c *Compiler) { c.decode = fn }
}

// WithCacheSize overrides the resolution cache capacity.
func WithCacheSize(size int) Option {
	return func(c *Compiler) {
		cache, err := lru.New[string, *schema.Component](size)
		if err != nil {
			panic(fmt.Sprintf("compiler: invalid cache size %d: %v", size, err))
		}
		c.cache = cache
	}
}

// New creates a Compiler with the given time budget. A non-positive timeout
// falls back to DefaultTimeout.
func New(timeout time.Duration, opts ...Option) *Compiler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cache, err := lru.New[string, *schema.Component](defaultCacheSize)
	if err != nil {
		panic(fmt.Sprintf("compiler: failed to create cache: %v", err))
	}
	c := &Compiler{
		timeout: timeout,
		decode:  schema.Decode,
		cache:   cache,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the configured compile budget.
func (c *Compiler) Timeout() time.Duration {
	return c.timeout
}

// cacheKey is a content hash of the source. Keying by content rather than by
// path means a same-path hot reload can never be served a stale component.
func cacheKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Resolve compiles the given source within the configured budget. On timeout
// the underlying decode keeps running but its result is discarded; it must
// not be applied to an entry that has since moved on, which the registry
// enforces with generation counters.
func (c *Compiler) Resolve(ctx context.Context, path string, source string) Result {
	logger := ctxlog.FromContext(ctx).With("path", path)
	start := time.Now()

	key := cacheKey(source)
	if component, ok := c.cache.Get(key); ok {
		logger.Debug("Compile cache hit.")
		return Result{Success: true, Component: component, Duration: time.Since(start)}
	}

	type decoded struct {
		component *schema.Component
		diags     hcl.Diagnostics
	}
	done := make(chan decoded, 1)

	go func() {
		component, diags := c.decode(path, source)
		done <- decoded{component: component, diags: diags}
	}()

	select {
	case d := <-done:
		if d.diags.HasErrors() {
			logger.Debug("Compile failed.", "error", d.diags.Error())
			return Result{
				Err:      fmt.Errorf("failed to compile panel source %s: %w", path, d.diags),
				Kind:     model.ErrImport,
				Duration: time.Since(start),
			}
		}
		c.cache.Add(key, d.component)
		logger.Debug("Compile succeeded.", "widgets", len(d.component.Widgets))
		return Result{Success: true, Component: d.component, Duration: time.Since(start)}

	case <-ctx.Done():
		// Cancellation means the host is going away, not that the panel
		// overran its budget. It carries no failure kind; the registry
		// discards such results without recording them.
		logger.Warn("Compile abandoned, context cancelled.", "error", ctx.Err())
		return Result{
			Err:      fmt.Errorf("compile of %s abandoned: %w", path, ctx.Err()),
			Duration: time.Since(start),
		}

	case <-time.After(c.timeout):
		logger.Warn("Compile exceeded time budget.", "budget", c.timeout)
		return Result{
			Err:      fmt.Errorf("compile of %s exceeded %s budget", path, c.timeout),
			Kind:     model.ErrTimeout,
			Duration: time.Since(start),
		}
	}
}

// ClearCache drops every cached component, forcing re-resolution on the next
// call. Invalidation is global; callers needing per-panel invalidation vary
// the source instead.
func (c *Compiler) ClearCache() {
	c.cache.Purge()
}
