package main

import (
	"bytes"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"visaverse-copilot/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_FromRegistry(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	a, ok := reg.Find("generate-roadmap")
	require.True(t, ok)

	out := t.TempDir()
	dir, err := generate(a, out, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "roadmap", "generate-roadmap"), dir)

	fset := token.NewFileSet()
	for _, name := range []string{"config.go", "models.go", "handler.go", "handler_test.go"} {
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, 0)
		require.NoError(t, err, name)
		assert.Equal(t, "generateroadmap", f.Name.Name)
	}

	models, err := os.ReadFile(filepath.Join(dir, "models.go"))
	require.NoError(t, err)
	assert.Contains(t, string(models), "DestinationCountry string `json:\"destinationCountry\"`")

	cfg, err := os.ReadFile(filepath.Join(dir, "config.go"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "90000 * time.Millisecond")

	_, err = generate(a, out, false)
	assert.Error(t, err, "existing files are kept without --force")
	_, err = generate(a, out, true)
	assert.NoError(t, err)
}

func TestRootCmd_UnknownActivity(t *testing.T) {
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"no-such-activity", "--out", t.TempDir()})
	assert.Error(t, cmd.Execute())
}

func TestStructFields(t *testing.T) {
	fields := structFields(map[string]interface{}{
		"properties": map[string]interface{}{
			"score":  map[string]interface{}{"type": "integer"},
			"active": map[string]interface{}{"type": "boolean"},
		},
	})
	assert.Equal(t, "\tActive bool `json:\"active\"`\n\tScore int `json:\"score\"`", fields)
	assert.Empty(t, structFields(nil))
	assert.Equal(t, "validatestudentprofile", packageName("validate-student-profile"))
}
