package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type item struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func itemRows(items []item) func() Rows {
	return func() Rows {
		rows := Rows{Headers: []string{"ID", "NAME"}}
		for _, it := range items {
			rows.Add(it.ID, it.Name)
		}
		return rows
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": Table, "TABLE": Table, "json": JSON, "yml": YAML, " yaml ": YAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	assert.EqualError(t, err, `unknown output format "xml" (expected table, json or yaml)`)
}

func TestRender_Table(t *testing.T) {
	var buf bytes.Buffer
	items := []item{{ID: "1", Name: "Website"}, {ID: "22", Name: "multi\nline"}}

	require.NoError(t, Render(&buf, Table, items, itemRows(items)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ID  NAME", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "──  ────", strings.TrimRight(lines[1], " "))
	assert.Equal(t, "1   Website", strings.TrimRight(lines[2], " "))
	assert.Equal(t, "22  multi line", strings.TrimRight(lines[3], " "))
}

func TestRender_EmptyCell(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, Rows{Rows: [][]string{{"a", ""}}}))
	assert.Equal(t, "a  -\n", buf.String())
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	items := []item{{ID: "1", Name: "Website"}}

	require.NoError(t, Render(&buf, JSON, items, nil))

	var got []item
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, items, got)
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	items := []item{{ID: "1", Name: "Website"}}

	require.NoError(t, Render(&buf, YAML, items, nil))
	assert.Equal(t, "- id: \"1\"\n  name: Website\n", buf.String())

	var got []item
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, items, got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "مرحب…", Truncate("مرحبا بكم", 5))
	assert.Equal(t, "anything", Truncate("anything", 0))
}
