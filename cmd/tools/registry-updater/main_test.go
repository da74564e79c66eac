package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"visaverse-copilot/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAddUpdateValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.json")

	out, err := run(t, "add", "--path", path,
		"--id", "notify-student", "--displayName", "Notify Student", "--taskType", "notify-student")
	require.NoError(t, err)
	assert.Contains(t, out, "Added activity: notify-student")

	_, err = run(t, "add", "--path", path,
		"--id", "notify-student", "--displayName", "Again", "--taskType", "notify-student")
	assert.Error(t, err)

	_, err = run(t, "update", "--path", path, "--id", "notify-student", "--field", "retries", "--value", "2")
	require.NoError(t, err)

	out, err = run(t, "validate", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 activities")

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, ok := reg.Find("notify-student")
	require.True(t, ok)
	assert.Equal(t, 2, a.Retries)
	assert.Equal(t, "roadmap", a.Category)
}

func TestValidate_ShippedRegistry(t *testing.T) {
	_, err := run(t, "validate", "--path", "../../../"+defaultRegistryPath)
	assert.NoError(t, err)
}

func TestUpdate_MissingFile(t *testing.T) {
	_, err := run(t, "update", "--path", filepath.Join(t.TempDir(), "none.json"),
		"--id", "x", "--field", "status", "--value", "done")
	assert.Error(t, err)
}
