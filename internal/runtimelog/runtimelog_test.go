package runtimelog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/corvidlang/corvid/internal/runerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallRoutesInternalErrorsToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corvid.log")

	l := New(Options{Filename: path})
	l.Install()
	defer func() {
		runerr.SetSink(nil)
		l.Close()
	}()

	err := runerr.Internalf("unreachable: %s", "test invariant broken")
	require.Error(t, err)

	contents, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Contains(t, string(contents), "unreachable: test invariant broken")
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{Filename: "x.log"}.withDefaults()
	assert.Equal(t, 10, o.MaxSizeMB)
	assert.Equal(t, 3, o.MaxBackups)
	assert.Equal(t, 28, o.MaxAgeDays)
}
