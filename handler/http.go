package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Indosaram/logxide/core"
)

// HTTPConfig configures an HTTPHandler. Zero values fall back to the
// documented defaults.
type HTTPConfig struct {
	// URL is the endpoint each batch is POSTed to.
	URL string
	// Headers are set on every request.
	Headers map[string]string
	// Capacity bounds the internal record queue (default: 10000).
	Capacity int
	// BatchSize triggers transmission when reached (default: 1000).
	BatchSize int
	// FlushInterval triggers transmission of a partial batch
	// (default: 30s).
	FlushInterval time.Duration
	// GlobalContext fields are merged into every record map.
	GlobalContext map[string]any
	// ContextProvider, when set, is called once per batch and its
	// result merged into every record map of that batch.
	ContextProvider func() map[string]any
	// Transform, when set, converts the batch into an arbitrary
	// wire payload. The default payload is the JSON array of record
	// maps.
	Transform func(batch []map[string]any) any
	// ErrorCallback receives transmission and callback failures.
	ErrorCallback func(error)
	// Client performs the POSTs (default: 10s-timeout client).
	Client *http.Client
}

// HTTPHandler accumulates records and POSTs them in batches from a
// background goroutine. A batch is transmitted when it reaches
// BatchSize, when FlushInterval elapses, or when a record at or
// above the flush level arrives. Delivery is at-most-once: a failed
// batch is reported through the error callback and not retried.
type HTTPHandler struct {
	Base
	url        string
	headers    map[string]string
	global     map[string]any
	provider   func() map[string]any
	transform  func(batch []map[string]any) any
	client     *http.Client
	batchSize  int
	interval   time.Duration
	flushLevel atomic.Int32

	// gate orders Emit's channel send against Close's close(queue):
	// Emit sends under the read side, Close closes under the write
	// side after the state flips to Closing.
	gate    sync.RWMutex
	queue   chan map[string]any
	flushCh chan struct{}
	wg      sync.WaitGroup
}

// NewHTTPHandler creates the handler and starts its background
// transmitter.
func NewHTTPHandler(cfg HTTPConfig) *HTTPHandler {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 30 * time.Second
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}

	h := &HTTPHandler{
		url:       cfg.URL,
		headers:   cfg.Headers,
		global:    cfg.GlobalContext,
		provider:  cfg.ContextProvider,
		transform: cfg.Transform,
		client:    cfg.Client,
		batchSize: cfg.BatchSize,
		interval:  cfg.FlushInterval,
		queue:     make(chan map[string]any, cfg.Capacity),
		flushCh:   make(chan struct{}, 1),
	}
	h.flushLevel.Store(int32(core.ERROR))
	if cfg.ErrorCallback != nil {
		h.SetErrorCallback(cfg.ErrorCallback)
	}

	h.wg.Add(1)
	go h.transmit()
	return h
}

// SetFlushLevel sets the severity at or above which a record forces
// an out-of-band batch transmission. Default is ERROR.
func (h *HTTPHandler) SetFlushLevel(level core.Level) {
	h.flushLevel.Store(int32(level))
}

// Emit snapshots the record into the queue without blocking. When
// the queue is full the record is dropped and counted; producers are
// never stalled on network I/O.
func (h *HTTPHandler) Emit(r *core.Record) error {
	if h.State() != StateOpen {
		return h.rejectClosed()
	}
	if !h.Enabled(r) {
		return nil
	}
	m := r.FieldMap()

	h.gate.RLock()
	if h.State() != StateOpen {
		h.gate.RUnlock()
		return h.rejectClosed()
	}
	select {
	case h.queue <- m:
	default:
		h.dropped.Add(1)
		h.gate.RUnlock()
		return nil
	}
	h.gate.RUnlock()

	if r.LevelNo >= core.Level(h.flushLevel.Load()) {
		h.signalFlush()
	}
	return nil
}

// Flush signals the transmitter to send the pending batch. The
// signal is asynchronous; it does not wait for the POST to finish.
func (h *HTTPHandler) Flush() error {
	h.signalFlush()
	return nil
}

func (h *HTTPHandler) signalFlush() {
	select {
	case h.flushCh <- struct{}{}:
	default:
	}
}

// Close drains the queue, transmits the final batch, and stops the
// background goroutine.
func (h *HTTPHandler) Close() error {
	if !h.beginClose() {
		return nil
	}
	h.gate.Lock()
	close(h.queue)
	h.gate.Unlock()
	h.wg.Wait()
	h.finishClose()
	return nil
}

// transmit is the background loop that owns the batch buffer. All
// network I/O happens here, never on a producer or the dispatch
// consumer.
func (h *HTTPHandler) transmit() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	batch := make([]map[string]any, 0, h.batchSize)
	for {
		select {
		case m, ok := <-h.queue:
			if !ok {
				h.send(batch)
				return
			}
			batch = append(batch, m)
			if len(batch) >= h.batchSize {
				h.send(batch)
				batch = batch[:0]
			}
		case <-h.flushCh:
			// Drain whatever is already queued so a flush-level
			// record does not leave itself behind in the channel.
			for drained := false; !drained; {
				select {
				case m, ok := <-h.queue:
					if !ok {
						h.send(batch)
						return
					}
					batch = append(batch, m)
				default:
					drained = true
				}
			}
			h.send(batch)
			batch = batch[:0]
		case <-ticker.C:
			if len(batch) > 0 {
				h.send(batch)
				batch = batch[:0]
			}
		}
	}
}

// send merges context fields into the batch, builds the payload, and
// POSTs it. Failures go to the error callback; the batch is not
// retried.
func (h *HTTPHandler) send(batch []map[string]any) {
	if len(batch) == 0 {
		return
	}

	dynamic := h.dynamicContext()
	for _, m := range batch {
		for k, v := range h.global {
			m[k] = v
		}
		for k, v := range dynamic {
			m[k] = v
		}
	}

	var payload any = batch
	if h.transform != nil {
		if p, ok := h.applyTransform(batch); ok {
			payload = p
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		h.ReportError(fmt.Errorf("http batch encode failed: %w", err))
		return
	}
	h.post(body, "application/json")
}

// dynamicContext invokes the per-batch context provider, containing
// any panic it raises.
func (h *HTTPHandler) dynamicContext() (ctx map[string]any) {
	if h.provider == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			h.ReportError(fmt.Errorf("context provider panicked: %v", p))
			ctx = nil
		}
	}()
	return h.provider()
}

// applyTransform invokes the batch transform callback, containing
// any panic it raises. ok is false when the callback failed and the
// default payload should be used.
func (h *HTTPHandler) applyTransform(batch []map[string]any) (payload any, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			h.ReportError(fmt.Errorf("transform callback panicked: %v", p))
			payload, ok = nil, false
		}
	}()
	return h.transform(batch), true
}

// post performs one POST with the configured headers.
func (h *HTTPHandler) post(body []byte, contentType string) {
	req, err := http.NewRequest(http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		h.ReportError(fmt.Errorf("http request build failed: %w", err))
		return
	}
	req.Header.Set("Content-Type", contentType)
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.ReportError(fmt.Errorf("http batch send failed: %w", err))
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		h.ReportError(fmt.Errorf("http batch rejected: status %d", resp.StatusCode))
	}
}
