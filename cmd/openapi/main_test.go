package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestExportYAML_ListsForumRoutes(t *testing.T) {
	raw, err := exportYAML()
	require.NoError(t, err)

	spec, err := parseSpec(raw)
	require.NoError(t, err)
	for _, path := range []string{"/ques/add", "/ques/get/{id}", "/ans/vote/{id}", "/ans/approve/{id}", "/auth/notifications"} {
		assert.Contains(t, spec.Paths, path)
	}
	assert.Contains(t, spec.Paths["/ans/approve/{id}"]["patch"].Responses, "403")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Equal(t, "2.0", doc["swagger"])
}

func TestCheckCompat(t *testing.T) {
	base := []byte(`
paths:
  /ques/get:
    get:
      responses:
        "200": {}
  /ans/add:
    post:
      responses:
        "201": {}
        "404": {}
`)

	t.Run("identical", func(t *testing.T) {
		issues, err := checkCompat(base, base)
		require.NoError(t, err)
		assert.Empty(t, issues)
	})

	t.Run("removals are reported", func(t *testing.T) {
		revision := []byte(`
paths:
  /ans/add:
    post:
      responses:
        "201": {}
`)
		issues, err := checkCompat(base, revision)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"removed path: /ques/get",
			"removed response code: POST /ans/add -> 404",
		}, issues)
	})

	t.Run("missing paths", func(t *testing.T) {
		_, err := checkCompat([]byte("swagger: \"2.0\"\n"), base)
		assert.Error(t, err)
	})
}
