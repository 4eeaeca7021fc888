package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestContextFieldsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "info")

	ctx := WithLogger(context.Background(), map[string]interface{}{"run_id": "r-1"})
	DebugLog(ctx, "hidden")
	InfoLog(ctx, "step %d done", 3)
	ErrorLog(ctx, errors.New("disk full"), "write %s failed", "parquet")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "step 3 done", lines[0]["message"])
	assert.Equal(t, "r-1", lines[0]["run_id"])
	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "write parquet failed", lines[1]["message"])
	assert.Equal(t, "disk full", lines[1]["error"])
}

func TestErrorLogWithoutError(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "info")

	ErrorLog(context.Background(), nil, "rows dropped: %d", 4)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "rows dropped: 4", lines[0]["message"])
	assert.NotContains(t, lines[0], "error")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "loud")

	DebugLog(context.Background(), "hidden")
	WarnLog(context.Background(), "shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
}
