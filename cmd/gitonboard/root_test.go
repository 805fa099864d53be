package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdStructure(t *testing.T) {
	root := NewRootCmd()

	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["generate"])
	assert.True(t, names["version"])
}

func TestGenerateRequiresOriginAndVersion(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"generate"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestVersionCommandRuns(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"version"})

	assert.NoError(t, root.Execute())
}
