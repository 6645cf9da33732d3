package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	"google.golang.org/protobuf/proto"

	"github.com/Indosaram/logxide/core"
)

// OTLPConfig configures an OTLPHandler.
type OTLPConfig struct {
	// URL is the OTLP/HTTP logs endpoint.
	URL string
	// ServiceName is carried as the service.name resource attribute.
	ServiceName string
	// Headers are set on every request.
	Headers map[string]string
	// Capacity bounds the internal record queue (default: 10000).
	Capacity int
	// BatchSize triggers transmission when reached (default: 1000).
	BatchSize int
	// FlushInterval triggers transmission of a partial batch
	// (default: 30s).
	FlushInterval time.Duration
	// ErrorCallback receives transmission failures.
	ErrorCallback func(error)
	// Client performs the POSTs (default: 10s-timeout client).
	Client *http.Client
}

// OTLPHandler batches records and POSTs them protobuf-encoded to an
// OpenTelemetry collector. Batching and delivery semantics match
// HTTPHandler: at-most-once, background transmission, never blocking
// a producer.
type OTLPHandler struct {
	Base
	url       string
	service   string
	headers   map[string]string
	client    *http.Client
	batchSize int
	interval  time.Duration

	// gate orders Emit's channel send against Close's close(queue),
	// as in HTTPHandler.
	gate    sync.RWMutex
	queue   chan core.Record
	flushCh chan struct{}
	wg      sync.WaitGroup
}

// NewOTLPHandler creates the handler and starts its background
// transmitter.
func NewOTLPHandler(cfg OTLPConfig) *OTLPHandler {
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

	h := &OTLPHandler{
		url:       cfg.URL,
		service:   cfg.ServiceName,
		headers:   cfg.Headers,
		client:    cfg.Client,
		batchSize: cfg.BatchSize,
		interval:  cfg.FlushInterval,
		queue:     make(chan core.Record, cfg.Capacity),
		flushCh:   make(chan struct{}, 1),
	}
	if cfg.ErrorCallback != nil {
		h.SetErrorCallback(cfg.ErrorCallback)
	}

	h.wg.Add(1)
	go h.transmit()
	return h
}

// Emit snapshots the record into the queue without blocking,
// dropping it when the queue is full.
func (h *OTLPHandler) Emit(r *core.Record) error {
	if h.State() != StateOpen {
		return h.rejectClosed()
	}
	if !h.Enabled(r) {
		return nil
	}
	c := r.Clone()

	h.gate.RLock()
	defer h.gate.RUnlock()
	if h.State() != StateOpen {
		return h.rejectClosed()
	}
	select {
	case h.queue <- c:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// Flush signals the transmitter to send the pending batch.
func (h *OTLPHandler) Flush() error {
	select {
	case h.flushCh <- struct{}{}:
	default:
	}
	return nil
}

// Close drains the queue, transmits the final batch, and stops the
// background goroutine.
func (h *OTLPHandler) Close() error {
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

func (h *OTLPHandler) transmit() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	batch := make([]core.Record, 0, h.batchSize)
	for {
		select {
		case r, ok := <-h.queue:
			if !ok {
				h.send(batch)
				return
			}
			batch = append(batch, r)
			if len(batch) >= h.batchSize {
				h.send(batch)
				batch = batch[:0]
			}
		case <-h.flushCh:
			for drained := false; !drained; {
				select {
				case r, ok := <-h.queue:
					if !ok {
						h.send(batch)
						return
					}
					batch = append(batch, r)
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

// severityNumber maps the 0-50 level scale onto OTLP severity
// numbers.
func severityNumber(level core.Level) logspb.SeverityNumber {
	switch {
	case level >= core.CRITICAL:
		return logspb.SeverityNumber_SEVERITY_NUMBER_FATAL
	case level >= core.ERROR:
		return logspb.SeverityNumber_SEVERITY_NUMBER_ERROR
	case level >= core.WARNING:
		return logspb.SeverityNumber_SEVERITY_NUMBER_WARN
	case level >= core.INFO:
		return logspb.SeverityNumber_SEVERITY_NUMBER_INFO
	case level >= core.DEBUG:
		return logspb.SeverityNumber_SEVERITY_NUMBER_DEBUG
	default:
		return logspb.SeverityNumber_SEVERITY_NUMBER_UNSPECIFIED
	}
}

func stringAttr(key, value string) *commonpb.KeyValue {
	return &commonpb.KeyValue{
		Key: key,
		Value: &commonpb.AnyValue{
			Value: &commonpb.AnyValue_StringValue{StringValue: value},
		},
	}
}

func intAttr(key string, value int64) *commonpb.KeyValue {
	return &commonpb.KeyValue{
		Key: key,
		Value: &commonpb.AnyValue{
			Value: &commonpb.AnyValue_IntValue{IntValue: value},
		},
	}
}

// send encodes the batch as OTLP ResourceLogs grouped under the
// configured service name and POSTs it.
func (h *OTLPHandler) send(batch []core.Record) {
	if len(batch) == 0 {
		return
	}

	records := make([]*logspb.LogRecord, len(batch))
	for i := range batch {
		r := &batch[i]
		lr := &logspb.LogRecord{
			TimeUnixNano:         uint64(r.Created.UnixNano()),
			ObservedTimeUnixNano: uint64(r.Created.UnixNano()),
			SeverityNumber:       severityNumber(r.LevelNo),
			SeverityText:         r.LevelName,
			Body: &commonpb.AnyValue{
				Value: &commonpb.AnyValue_StringValue{StringValue: r.Message()},
			},
			Attributes: []*commonpb.KeyValue{
				stringAttr("logger.name", r.Name),
				stringAttr("code.filepath", r.Pathname),
				intAttr("code.lineno", int64(r.Lineno)),
				stringAttr("code.function", r.FuncName),
			},
		}
		for k, v := range r.Extra {
			lr.Attributes = append(lr.Attributes, stringAttr(k, fmt.Sprint(v)))
		}
		records[i] = lr
	}

	resourceLogs := &logspb.ResourceLogs{
		Resource: &resourcepb.Resource{
			Attributes: []*commonpb.KeyValue{stringAttr("service.name", h.service)},
		},
		ScopeLogs: []*logspb.ScopeLogs{{LogRecords: records}},
	}

	body, err := proto.Marshal(resourceLogs)
	if err != nil {
		h.ReportError(fmt.Errorf("otlp batch encode failed: %w", err))
		return
	}

	req, err := http.NewRequest(http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		h.ReportError(fmt.Errorf("otlp request build failed: %w", err))
		return
	}
	req.Header.Set("Content-Type", "application/x-protobuf")
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.ReportError(fmt.Errorf("otlp batch send failed: %w", err))
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		h.ReportError(fmt.Errorf("otlp batch rejected: status %d", resp.StatusCode))
	}
}
