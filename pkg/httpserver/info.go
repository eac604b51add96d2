package httpserver

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// Info is the body of the /meta/info endpoint.
type Info struct {
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	UptimeSeconds float64    `json:"uptime_seconds"`
	GoVersion     string     `json:"go_version"`
	Platform      string     `json:"platform"`
	Instance      string     `json:"instance,omitempty"`
	Goroutines    int        `json:"goroutines"`
	Memory        MemoryInfo `json:"memory"`
}

// MemoryInfo is a subset of runtime.MemStats, in bytes.
type MemoryInfo struct {
	Alloc     uint64 `json:"alloc"`
	HeapInuse uint64 `json:"heap_inuse"`
	Sys       uint64 `json:"sys"`
	NumGC     uint32 `json:"num_gc"`
}

// InfoHandler reports process metadata: start time, uptime, runtime and
// platform, memory and the instance name when several replicas share a
// load balancer.
func InfoHandler(startedAt time.Time, instance string) http.HandlerFunc {
	startedAt = startedAt.UTC()
	return func(w http.ResponseWriter, _ *http.Request) {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(Info{
			Status:        "ok",
			StartedAt:     startedAt,
			UptimeSeconds: time.Since(startedAt).Seconds(),
			GoVersion:     runtime.Version(),
			Platform:      runtime.GOOS + "/" + runtime.GOARCH,
			Instance:      instance,
			Goroutines:    runtime.NumGoroutine(),
			Memory: MemoryInfo{
				Alloc:     ms.Alloc,
				HeapInuse: ms.HeapInuse,
				Sys:       ms.Sys,
				NumGC:     ms.NumGC,
			},
		})
	}
}
