package config

import "sync"

// RenderSettings holds render configuration
type RenderSettings struct {
	mu sync.RWMutex
	// number of per-object texture updates in one frame after which a layer
	// stops issuing per-texel uploads and defers one whole-texture upload
	// to the frame-start flush
	deferredFlagsThreshold int
	fpsLimit               int
	showOverlay            bool
}

var globalRenderSettings = &RenderSettings{
	deferredFlagsThreshold: 10,
	fpsLimit:               0, // 0 = uncapped
	showOverlay:            true,
}

// GetDeferredFlagsThreshold returns the per-frame update count at which
// layers switch from per-texel uploads to one deferred whole-texture upload.
func GetDeferredFlagsThreshold() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.deferredFlagsThreshold
}

// SetDeferredFlagsThreshold sets the deferred-upload escalation threshold
func SetDeferredFlagsThreshold(n int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	// Clamp to reasonable values
	if n < 1 {
		n = 1
	}
	if n > 4096 {
		n = 4096
	}

	globalRenderSettings.deferredFlagsThreshold = n
}

// GetFPSLimit returns the viewer frame cap (0 = uncapped)
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the viewer frame cap
func SetFPSLimit(limit int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	if limit < 0 {
		limit = 0
	}
	if limit > 480 {
		limit = 480
	}

	globalRenderSettings.fpsLimit = limit
}

// GetShowOverlay reports whether the viewer stats overlay is enabled
func GetShowOverlay() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.showOverlay
}

// SetShowOverlay toggles the viewer stats overlay
func SetShowOverlay(show bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.showOverlay = show
}
