package schemas

import (
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, name := range All() {
		t.Run(name, func(t *testing.T) {
			data, err := fs.ReadFile(Files, name)
			require.NoError(t, err, "should be able to read schema file")

			var v map[string]interface{}
			err = json.Unmarshal(data, &v)
			require.NoError(t, err, "schema file should be valid JSON: %s", name)
			assert.Equal(t, "object", v["type"])
			assert.Contains(t, v, "then", "success responses should declare required fields")
		})
	}
}

func TestAllSchemaFiles_Listed(t *testing.T) {
	embedded, err := fs.Glob(Files, "*.schema.json")
	require.NoError(t, err)
	assert.ElementsMatch(t, embedded, All())
}
