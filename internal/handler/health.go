package handler

import (
	"io"
	"net/http"
	"runtime"
	"time"
)

// HealthHandler serves the unauthenticated, unthrottled liveness
// endpoints.
type HealthHandler struct {
	start time.Time
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{start: time.Now()}
}

// Root answers the bare liveness probe.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	io.WriteString(w, "API is live.")
}

// Health reports process uptime, memory, and runtime version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    http.StatusOK,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.start).Seconds(),
		"memory": map[string]uint64{
			"alloc":      m.Alloc,
			"totalAlloc": m.TotalAlloc,
			"sys":        m.Sys,
			"heapInUse":  m.HeapInuse,
		},
		"version": runtime.Version(),
	})
}
