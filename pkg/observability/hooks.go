// Package observability lets the application observe scene builds, exports,
// cache traffic and HTTP requests without tying libraries to a metrics or
// tracing backend.
//
// Libraries report events through the accessors:
//
//	observability.Export().OnExportStart(ctx, widthCm, dpi)
//	// rasterize, trim, encode
//	observability.Export().OnExportComplete(ctx, n, time.Since(start), err)
//
// Only main registers hooks, before any work starts:
//
//	observability.SetExportHooks(promExport{})
//	observability.SetCacheHooks(promCache{})
//
// Until then every accessor returns a no-op implementation.
package observability

import (
	"context"
	"sync"
	"time"
)

// SceneHooks receives events from the scene builder and updater.
type SceneHooks interface {
	// OnBuild fires after a full rebuild that produced nodeCount nodes.
	OnBuild(ctx context.Context, template string, nodeCount int, duration time.Duration)

	// OnUpdate fires after an incremental update. change names the change
	// class ("cosmetic", "textual", "structural").
	OnUpdate(ctx context.Context, change string, duration time.Duration)
}

// ExportHooks receives events from the export pipeline.
type ExportHooks interface {
	OnExportStart(ctx context.Context, widthCm float64, dpi int)
	OnExportComplete(ctx context.Context, bytes int, duration time.Duration, err error)
}

// CacheHooks receives events from instrumented caches. keyType groups keys
// by purpose, e.g. "export".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the export service.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// NoopSceneHooks ignores all scene events.
type NoopSceneHooks struct{}

func (NoopSceneHooks) OnBuild(context.Context, string, int, time.Duration) {}
func (NoopSceneHooks) OnUpdate(context.Context, string, time.Duration)     {}

// NoopExportHooks ignores all export events.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExportStart(context.Context, float64, int)                  {}
func (NoopExportHooks) OnExportComplete(context.Context, int, time.Duration, error) {}

// NoopCacheHooks ignores all cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores all HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

type registry struct {
	scene  SceneHooks
	export ExportHooks
	cache  CacheHooks
	http   HTTPHooks
}

func defaults() registry {
	return registry{NoopSceneHooks{}, NoopExportHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}}
}

var (
	mu    sync.RWMutex
	hooks = defaults()
)

// register stores h in the slot selected by field. Nil hooks are ignored so
// a caller cannot disable reporting by accident.
func register[T comparable](h T, field func(*registry) *T) {
	var zero T
	if h == zero {
		return
	}
	mu.Lock()
	*field(&hooks) = h
	mu.Unlock()
}

func load[T any](field func(*registry) *T) T {
	mu.RLock()
	defer mu.RUnlock()
	return *field(&hooks)
}

func sceneSlot(r *registry) *SceneHooks   { return &r.scene }
func exportSlot(r *registry) *ExportHooks { return &r.export }
func cacheSlot(r *registry) *CacheHooks   { return &r.cache }
func httpSlot(r *registry) *HTTPHooks     { return &r.http }

// SetSceneHooks registers scene hooks. Call it once, at startup.
func SetSceneHooks(h SceneHooks) { register(h, sceneSlot) }

// SetExportHooks registers export hooks. Call it once, at startup.
func SetExportHooks(h ExportHooks) { register(h, exportSlot) }

// SetCacheHooks registers cache hooks. Call it once, at startup.
func SetCacheHooks(h CacheHooks) { register(h, cacheSlot) }

// SetHTTPHooks registers HTTP hooks. Call it once, at startup.
func SetHTTPHooks(h HTTPHooks) { register(h, httpSlot) }

// Scene returns the registered scene hooks.
func Scene() SceneHooks { return load(sceneSlot) }

// Export returns the registered export hooks.
func Export() ExportHooks { return load(exportSlot) }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return load(cacheSlot) }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return load(httpSlot) }

// Reset restores the no-op hooks. Tests use it to undo registrations.
func Reset() {
	mu.Lock()
	hooks = defaults()
	mu.Unlock()
}
