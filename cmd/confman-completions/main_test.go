package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellNames(t *testing.T) {
	assert.Equal(t, []string{"bash", "fish", "powershell", "zsh"}, shellNames())
}

func TestWriteScriptForEveryShell(t *testing.T) {
	dir := t.TempDir()
	for _, shell := range shellNames() {
		t.Run(shell, func(t *testing.T) {
			g := generators[shell]
			path := filepath.Join(dir, g.file)
			require.NoError(t, writeScript(path, g))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data), "confman")
		})
	}
}
