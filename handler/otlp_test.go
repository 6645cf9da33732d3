package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	"google.golang.org/protobuf/proto"

	"github.com/Indosaram/logxide/core"
)

// collectorServer decodes OTLP protobuf payloads.
type collectorServer struct {
	*httptest.Server
	mu       sync.Mutex
	payloads []*logspb.ResourceLogs
	ctype    string
}

func newCollectorServer(t *testing.T) *collectorServer {
	t.Helper()
	cs := &collectorServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var rl logspb.ResourceLogs
		require.NoError(t, proto.Unmarshal(body, &rl))
		cs.mu.Lock()
		cs.payloads = append(cs.payloads, &rl)
		cs.ctype = r.Header.Get("Content-Type")
		cs.mu.Unlock()
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *collectorServer) logRecords() []*logspb.LogRecord {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	var out []*logspb.LogRecord
	for _, rl := range cs.payloads {
		for _, sl := range rl.ScopeLogs {
			out = append(out, sl.LogRecords...)
		}
	}
	return out
}

func attrValue(attrs []*commonpb.KeyValue, key string) *commonpb.AnyValue {
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value
		}
	}
	return nil
}

func TestOTLPHandlerEncodesRecords(t *testing.T) {
	srv := newCollectorServer(t)
	h := NewOTLPHandler(OTLPConfig{
		URL:         srv.URL,
		ServiceName: "checkout",
	})

	r := record(core.ERROR, "payment declined for %s", "order-77")
	r.SetExtra(map[string]any{"order_id": "order-77"})
	require.NoError(t, h.Emit(r))
	require.NoError(t, h.Close())

	srv.mu.Lock()
	require.Len(t, srv.payloads, 1)
	resource := srv.payloads[0].Resource
	ctype := srv.ctype
	srv.mu.Unlock()

	assert.Equal(t, "application/x-protobuf", ctype)
	require.NotNil(t, attrValue(resource.Attributes, "service.name"))
	assert.Equal(t, "checkout", attrValue(resource.Attributes, "service.name").GetStringValue())

	records := srv.logRecords()
	require.Len(t, records, 1)
	lr := records[0]
	assert.Equal(t, "payment declined for order-77", lr.Body.GetStringValue())
	assert.Equal(t, logspb.SeverityNumber_SEVERITY_NUMBER_ERROR, lr.SeverityNumber)
	assert.Equal(t, "ERROR", lr.SeverityText)
	assert.NotZero(t, lr.TimeUnixNano)
	assert.Equal(t, "test", attrValue(lr.Attributes, "logger.name").GetStringValue())
	assert.Equal(t, "order-77", attrValue(lr.Attributes, "order_id").GetStringValue())
}

func TestOTLPSeverityMapping(t *testing.T) {
	tests := []struct {
		level core.Level
		want  logspb.SeverityNumber
	}{
		{core.DEBUG, logspb.SeverityNumber_SEVERITY_NUMBER_DEBUG},
		{core.INFO, logspb.SeverityNumber_SEVERITY_NUMBER_INFO},
		{core.WARNING, logspb.SeverityNumber_SEVERITY_NUMBER_WARN},
		{core.ERROR, logspb.SeverityNumber_SEVERITY_NUMBER_ERROR},
		{core.CRITICAL, logspb.SeverityNumber_SEVERITY_NUMBER_FATAL},
		{core.Level(35), logspb.SeverityNumber_SEVERITY_NUMBER_WARN},
		{core.Level(2), logspb.SeverityNumber_SEVERITY_NUMBER_UNSPECIFIED},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, severityNumber(tt.level), "level %d", tt.level)
	}
}

func TestOTLPHandlerBatchesBySize(t *testing.T) {
	srv := newCollectorServer(t)
	h := NewOTLPHandler(OTLPConfig{
		URL:           srv.URL,
		ServiceName:   "batcher",
		BatchSize:     4,
		FlushInterval: time.Hour,
	})
	defer h.Close()

	for i := 0; i < 4; i++ {
		require.NoError(t, h.Emit(record(core.INFO, "span %d", i)))
	}
	assert.Eventually(t, func() bool { return len(srv.logRecords()) == 4 }, 2*time.Second, 10*time.Millisecond)
}

func TestOTLPHandlerFlushSendsPartialBatch(t *testing.T) {
	srv := newCollectorServer(t)
	h := NewOTLPHandler(OTLPConfig{
		URL:           srv.URL,
		ServiceName:   "flusher",
		BatchSize:     100,
		FlushInterval: time.Hour,
	})
	defer h.Close()

	require.NoError(t, h.Emit(record(core.INFO, "pending")))
	require.NoError(t, h.Flush())
	assert.Eventually(t, func() bool { return len(srv.logRecords()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestOTLPHandlerCloseDrains(t *testing.T) {
	srv := newCollectorServer(t)
	h := NewOTLPHandler(OTLPConfig{
		URL:         srv.URL,
		ServiceName: "drainer",
	})

	for i := 0; i < 6; i++ {
		require.NoError(t, h.Emit(record(core.INFO, "tail %d", i)))
	}
	require.NoError(t, h.Close())

	assert.Len(t, srv.logRecords(), 6)
	assert.ErrorIs(t, h.Emit(record(core.INFO, "late")), ErrClosed)
}

func TestOTLPHandlerEmitRacingCloseDoesNotPanic(t *testing.T) {
	srv := newCollectorServer(t)
	h := NewOTLPHandler(OTLPConfig{
		URL:         srv.URL,
		ServiceName: "racer",
	})

	start := make(chan struct{})
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for i := 0; i < 200; i++ {
				_ = h.Emit(record(core.INFO, "racing"))
			}
		}()
	}
	close(start)
	require.NoError(t, h.Close())
	wg.Wait()

	assert.ErrorIs(t, h.Emit(record(core.INFO, "late")), ErrClosed)
}
