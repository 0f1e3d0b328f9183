package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFile_CreatesParentsAndReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out", "processed.csv")
	require.NoError(t, SafeWriteFile(p, []byte("a")))
	require.NoError(t, SafeWriteFile(p, []byte("b")))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "b", string(b))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"records": 4})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"records\": 4\n}", string(b))
}

func TestYAML_UsesJSONNames(t *testing.T) {
	type row struct {
		Total string `json:"total_sales"`
		Count int    `json:"count"`
	}
	b, err := YAML(row{Total: "11", Count: 4})
	require.NoError(t, err)
	assert.Contains(t, string(b), "total_sales: \"11\"")
	assert.Contains(t, string(b), "count: 4")
}
