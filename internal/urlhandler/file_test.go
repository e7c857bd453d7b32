package urlhandler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/httpeek/internal/common"
)

func TestReadTargets(t *testing.T) {
	got, err := ReadTargets(strings.NewReader("  a.example \n\n\t\nhttps://b.example/\r\nc.example"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example", "https://b.example/", "c.example"}, got)
}

func TestReadTargetsFromFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "hosts.txt")
	require.NoError(t, os.WriteFile(path, []byte("a.example\n\nb.example\n"), 0o600))
	got, err := ReadTargetsFromFile(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example", "b.example"}, got)

	_, err = ReadTargetsFromFile(filepath.Join(dir, "missing.txt"), zerolog.Nop())
	assert.True(t, errors.Is(err, ErrFileNotFound))

	blank := filepath.Join(dir, "blank.txt")
	require.NoError(t, os.WriteFile(blank, []byte("\n \n"), 0o600))
	_, err = ReadTargetsFromFile(blank, zerolog.Nop())
	assert.True(t, errors.Is(err, ErrFileEmpty))

	_, err = ReadTargetsFromFile(dir, zerolog.Nop())
	assert.True(t, errors.Is(err, ErrReadingFile))
}

func TestTargetManager_LoadTargets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.txt")
	require.NoError(t, os.WriteFile(path, []byte("b.example\n"), 0o600))

	tm := NewTargetManager(zerolog.Nop())
	got, err := tm.LoadTargets(TargetSources{
		URL:      " a.example ",
		ListFile: path,
		Stdin:    strings.NewReader("c.example\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example", "b.example", "c.example"}, got)

	_, err = tm.LoadTargets(TargetSources{})
	assert.ErrorIs(t, err, common.ErrNoTargets)

	_, err = tm.LoadTargets(TargetSources{ListFile: filepath.Join(dir, "nope")})
	assert.ErrorIs(t, err, ErrFileNotFound)
}
