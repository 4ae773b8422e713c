package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalyst-trader/internal/model"
)

func TestWriteFillsCSV(t *testing.T) {
	ts := time.Date(2024, 5, 1, 14, 31, 0, 0, time.UTC)
	fills := []model.Fill{
		{Ts: ts, Symbol: "ABC", Side: model.SideBuy, Px: 2.01, Qty: 2500},
		{Ts: ts.Add(5 * time.Minute), Symbol: "ABC", Side: model.SideSell, Px: 2.35, Qty: 2500, Reason: "TRAILING_STOP"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFillsCSV(&buf, fills))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ts,symbol,side,px,qty,reason", lines[0])
	assert.Equal(t, "2024-05-01T14:31:00Z,ABC,BUY,2.01,2500,", lines[1])
	assert.Equal(t, "2024-05-01T14:36:00Z,ABC,SELL,2.35,2500,TRAILING_STOP", lines[2])
}

func TestWriteFillsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFillsCSV(&buf, nil))
	assert.Equal(t, "ts,symbol,side,px,qty,reason\n", buf.String())
}

func TestWriteFillsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fills.csv")
	require.NoError(t, WriteFillsFile(path, []model.Fill{{Ts: time.Unix(0, 0), Symbol: "X", Side: model.SideBuy, Px: 1, Qty: 1}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1970-01-01T00:00:00Z,X,BUY,1,1,")

	assert.Error(t, WriteFillsFile(filepath.Join(t.TempDir(), "missing", "fills.csv"), nil))
}
