package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionDefault(t *testing.T) {
	SetVersionInfo("dev", "none", "unknown")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "clockfill dev (commit: none, built: unknown)\n", buf.String())
}

func TestVersionRelease(t *testing.T) {
	SetVersionInfo("1.0.0", "abc1234", "2025-01-01")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "clockfill 1.0.0 (commit: abc1234, built: 2025-01-01)\n", buf.String())
}

func TestVersionShort(t *testing.T) {
	SetVersionInfo("1.2.3", "abc1234", "2025-01-01")
	t.Cleanup(func() { _ = versionCmd.Flags().Set("short", "false") })

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version", "--short"})
	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "1.2.3\n", buf.String())
}
