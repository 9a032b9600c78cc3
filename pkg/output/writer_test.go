package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-123")

	assert.NotNil(t, w)
	assert.Equal(t, "job-123", w.jobID)
}

func TestJSONLWriter_WriteStage(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-123")

	err := w.WriteStage(context.Background(), &StageRecord{
		Stage: "export",
		State: "exporting",
	})
	require.NoError(t, err)

	var record Record
	err = json.Unmarshal(buf.Bytes(), &record)
	require.NoError(t, err)

	assert.Equal(t, TypeStage, record.Type)
	assert.Equal(t, "job-123", record.JobID)
	assert.False(t, record.TS.IsZero())

	var data StageRecord
	err = json.Unmarshal(record.Data, &data)
	require.NoError(t, err)

	assert.Equal(t, "export", data.Stage)
	assert.Equal(t, "exporting", data.State)
}

func TestJSONLWriter_WriteCountAndWarning(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-456")

	require.NoError(t, w.WriteCount(context.Background(), &CountRecord{
		Collection: "projects",
		Documents:  42,
	}))
	require.NoError(t, w.WriteWarning(context.Background(), &WarningRecord{
		Collection: "feedback",
		Detail:     "collection does not exist",
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, TypeCount, first.Type)

	var count CountRecord
	require.NoError(t, json.Unmarshal(first.Data, &count))
	assert.Equal(t, "projects", count.Collection)
	assert.Equal(t, int64(42), count.Documents)

	var second Record
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, TypeWarning, second.Type)
}

func TestJSONLWriter_WriteSummary(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-789")

	err := w.WriteSummary(context.Background(), &SummaryRecord{
		State:              "completed",
		CollectionsCounted: 9,
		Warnings:           1,
		DurationMS:         1500,
	})
	require.NoError(t, err)

	var record Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, TypeSummary, record.Type)

	var sum SummaryRecord
	require.NoError(t, json.Unmarshal(record.Data, &sum))
	assert.Equal(t, "completed", sum.State)
	assert.Equal(t, 9, sum.CollectionsCounted)
	assert.Equal(t, 1, sum.Warnings)
}

func TestJSONLWriter_WriteAfterClose(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-closed")

	require.NoError(t, w.Close())

	err := w.WriteStage(context.Background(), &StageRecord{Stage: "export", State: "exporting"})
	assert.ErrorIs(t, err, ErrWriterClosed)
	assert.Empty(t, buf.String())
}

func TestJSONLWriter_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = w.WriteCount(context.Background(), &CountRecord{
				Collection: "templates",
				Documents:  int64(n),
			})
		}(i)
	}
	wg.Wait()

	// Every line must be independently parseable (no interleaving).
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 10)
	for _, line := range lines {
		var record Record
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		assert.Equal(t, TypeCount, record.Type)
	}
}

func TestJSONLWriter_CancelledContext(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-ctx")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.WriteStage(ctx, &StageRecord{Stage: "export", State: "exporting"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}
