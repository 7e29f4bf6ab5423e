package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	ingestStartedTotal   atomic.Uint64
	ingestCompletedTotal atomic.Uint64
	ingestFailedTotal    atomic.Uint64

	skillGapCacheHitsTotal   atomic.Uint64
	skillGapCacheMissesTotal atomic.Uint64
	chatTurnsTotal           atomic.Uint64

	engineCallFailuresTotal atomic.Uint64
	engineCallDuration      = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncIngestStarted counts a resume ingestion that passed validation.
func IncIngestStarted() {
	ingestStartedTotal.Add(1)
}

// IncIngestCompleted counts a persisted resume.
func IncIngestCompleted() {
	ingestCompletedTotal.Add(1)
}

// IncIngestFailed counts an aborted ingestion.
func IncIngestFailed() {
	ingestFailedTotal.Add(1)
}

func IncSkillGapCacheHit() {
	skillGapCacheHitsTotal.Add(1)
}

func IncSkillGapCacheMiss() {
	skillGapCacheMissesTotal.Add(1)
}

func IncChatTurn() {
	chatTurnsTotal.Add(1)
}

// ObserveEngineCall records the duration of one engine round trip and
// whether it failed.
func ObserveEngineCall(d time.Duration, failed bool) {
	ms := float64(d.Microseconds()) / 1000.0
	if ms < 0 {
		ms = 0
	}
	engineCallDuration.Observe(ms)
	if failed {
		engineCallFailuresTotal.Add(1)
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resume_ingest_started_total", "Resume ingestions started", ingestStartedTotal.Load())
	writeCounter(&buf, "resume_ingest_completed_total", "Resume ingestions persisted", ingestCompletedTotal.Load())
	writeCounter(&buf, "resume_ingest_failed_total", "Resume ingestions aborted", ingestFailedTotal.Load())
	writeCounter(&buf, "skill_gap_cache_hits_total", "Skill-gap lookups served from stored analyses", skillGapCacheHitsTotal.Load())
	writeCounter(&buf, "skill_gap_cache_misses_total", "Skill-gap lookups that called the engine", skillGapCacheMissesTotal.Load())
	writeCounter(&buf, "chat_turns_total", "Chat turns appended", chatTurnsTotal.Load())
	writeCounter(&buf, "engine_call_failures_total", "Failed analysis engine calls", engineCallFailuresTotal.Load())
	writeHistogram(&buf, "engine_call_duration_ms", "Analysis engine call duration in milliseconds", engineCallDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
