package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	fileUploadsTotal   atomic.Uint64
	fileDownloadsTotal atomic.Uint64
	fileDeletesTotal   atomic.Uint64
	storageErrorsTotal atomic.Uint64

	uploadSizeBytes = newHistogram([]float64{1 << 10, 16 << 10, 256 << 10, 1 << 20, 4 << 20, 10 << 20})
)

// IncFileUpload increments the upload counter and records the size.
func IncFileUpload(sizeBytes int64) {
	fileUploadsTotal.Add(1)
	if sizeBytes < 0 {
		sizeBytes = 0
	}
	uploadSizeBytes.Observe(float64(sizeBytes))
}

// IncFileDownload increments the download counter.
func IncFileDownload() {
	fileDownloadsTotal.Add(1)
}

// IncFileDelete increments the delete counter.
func IncFileDelete() {
	fileDeletesTotal.Add(1)
}

// IncStorageError increments the storage failure counter.
func IncStorageError() {
	storageErrorsTotal.Add(1)
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
	writeCounter(&buf, "profile_file_uploads_total", "Total profile file uploads", fileUploadsTotal.Load())
	writeCounter(&buf, "profile_file_downloads_total", "Total profile file downloads", fileDownloadsTotal.Load())
	writeCounter(&buf, "profile_file_deletes_total", "Total profile file deletes", fileDeletesTotal.Load())
	writeCounter(&buf, "object_storage_errors_total", "Total object storage call failures", storageErrorsTotal.Load())
	writeHistogram(&buf, "profile_file_upload_size_bytes", "Uploaded file size in bytes", uploadSizeBytes.Snapshot())
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
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
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
