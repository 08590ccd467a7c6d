package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintrovert/taskfeatures/pkg/types"
)

func TestWrite(t *testing.T) {
	records := []types.Feature{
		{ID: "a", Title: "first", Labels: []string{"bug"}, Assignees: []string{}},
		{ID: "b", Title: "second", Labels: []string{}, Assignees: []string{}},
	}

	t.Run("Should write an indented array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, records, FormatJSON))
		assert.True(t, strings.HasPrefix(buf.String(), "[\n  {\n"))
		var decoded []types.Feature
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, records, decoded)
	})

	t.Run("Should write one record per line", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, records, FormatJSONL))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], `"_id":"a"`)
		assert.Contains(t, lines[1], `"_id":"b"`)
	})

	t.Run("Should write an empty array for no records", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, nil, FormatJSON))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("Should omit classification fields when absent", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, records[:1], FormatJSONL))
		assert.NotContains(t, buf.String(), "categories")
		assert.NotContains(t, buf.String(), "focus_areas")
	})

	t.Run("Should reject unknown formats", func(t *testing.T) {
		assert.Error(t, Write(&bytes.Buffer{}, records, Format("csv")))
	})
}

func TestParseFormat(t *testing.T) {
	t.Run("Should accept known formats", func(t *testing.T) {
		f, err := ParseFormat("jsonl")
		require.NoError(t, err)
		assert.Equal(t, FormatJSONL, f)
		assert.Equal(t, "application/x-ndjson", f.ContentType())
	})

	t.Run("Should reject unknown formats", func(t *testing.T) {
		_, err := ParseFormat("xml")
		assert.Error(t, err)
	})
}
