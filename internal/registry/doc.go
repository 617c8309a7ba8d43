// Package registry owns the canonical set of loaded panels and drives their
// lifecycle: loading → ready, loading → error, error → loading on retry, and
// ready → error when the render boundary reports a late failure.
//
// Every mutation path (compile success, compile failure, render failure,
// retry, removal) converges on one entry map guarded by one mutex, so
// observers can never see divergent views of "what was imported" versus
// "what is currently shown". Compile attempts run concurrently, but their
// completions are serialized back through that single mutation point and a
// completion is applied only if its generation still matches the entry's —
// a slow, stale attempt can never clobber a newer one.
package registry
