package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")

	logger.Info("dropped")
	logger.Warn("kept", slog.String("k", "v"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "v", line["k"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestRequestContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug", "json")

	reqCtx := NewRequestContext(logger, "/api/process-brain-dump", "alice")
	assert.Len(t, reqCtx.RequestID, 36)

	reqCtx.Error("failed", errors.New("boom"), slog.Int(LogFieldEventCount, 2))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, reqCtx.RequestID, line[LogFieldRequestID])
	assert.Equal(t, "alice", line[LogFieldUserID])
	assert.Equal(t, "/api/process-brain-dump", line[LogFieldEndpoint])
	assert.Equal(t, "boom", line["error"])
	assert.EqualValues(t, 2, line[LogFieldEventCount])

	ctx := WithRequestContext(context.Background(), reqCtx)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, reqCtx, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.RecordRequest("/api/process-brain-dump", 20*time.Millisecond, i%5 == 0)
			if i%2 == 0 {
				m.RecordFallback("malformed-response")
			}
		}(i)
	}
	wg.Wait()
	m.RecordRequest("/api/events", 0, false)

	snap := m.Snapshot()
	assert.EqualValues(t, 11, snap.RequestTotal)
	assert.EqualValues(t, 2, snap.RequestFailed)
	assert.EqualValues(t, 5, snap.Fallbacks["malformed-response"])
	require.Len(t, snap.Endpoints, 2)
	assert.Equal(t, "/api/events", snap.Endpoints[0].Endpoint)
	assert.EqualValues(t, 10, snap.Endpoints[1].Count)
	assert.EqualValues(t, 20, snap.Endpoints[1].AverageDuration)
	assert.InDelta(t, 81.8, snap.SuccessRate(), 0.1)

	m.Reset()
	assert.Zero(t, m.Snapshot().RequestTotal)
	assert.Equal(t, 100.0, m.Snapshot().SuccessRate())
}
