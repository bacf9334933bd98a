package handler

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// StatusHandler reports process and host health for operators.
type StatusHandler struct {
	startTime time.Time
	version   string
}

// NewStatusHandler creates a status handler stamped with the build version.
func NewStatusHandler(version string) *StatusHandler {
	return &StatusHandler{startTime: time.Now(), version: version}
}

// StatusResponse is the health snapshot returned by GET /status.
type StatusResponse struct {
	Online        bool    `json:"online"`
	Version       string  `json:"version"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMUsedMB     float64 `json:"ram_used_mb"`
	RAMPercent    float64 `json:"ram_percent"`
	DiskPercent   float64 `json:"disk_percent"`
}

// ServeHTTP returns the current health snapshot. Metric collection failures
// leave the affected field at zero rather than failing the request.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := StatusResponse{
		Online:        true,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
	}

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		resp.CPUPercent = round2(percents[0])
	}
	if stat, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		resp.RAMUsedMB = round2(float64(stat.Used) / 1024 / 1024)
		resp.RAMPercent = round2(stat.UsedPercent)
	}
	if stat, err := disk.UsageWithContext(ctx, "/"); err == nil {
		resp.DiskPercent = round2(stat.UsedPercent)
	}

	slog.Debug("status requested",
		"goroutines", resp.Goroutines,
		"cpu_percent", resp.CPUPercent,
	)

	writeJSON(w, http.StatusOK, NewSuccessResponse(resp))
}

func round2(val float64) float64 {
	return float64(int(val*100)) / 100
}
