package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/meai/internal/core/answer"
)

func TestLoadTrimsSurroundingWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mode_1.txt"), []byte("\nYou are ME AI.\n\n"), 0o644))

	got, err := NewStore(dir).Load("mode_1")
	require.NoError(t, err)

	assert.Equal(t, "You are ME AI.", got)
}

func TestLoadMissingTemplate(t *testing.T) {
	_, err := NewStore(t.TempDir()).Load("planner")

	assert.ErrorIs(t, err, answer.ErrPromptNotFound)
	assert.Contains(t, err.Error(), "planner")
}
