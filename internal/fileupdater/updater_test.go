package fileupdater_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"releasekit.dev/releasekit/internal/fileupdater"
)

func writeTemp(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pom.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return dir, path
}

func TestProcessFile(t *testing.T) {
	t.Run("rewrites matching lines", func(t *testing.T) {
		_, path := writeTemp(t, "<version>1.2.3-SNAPSHOT</version>\n<name>x</name>\n")

		changed, err := fileupdater.ProcessFile(path, func(line string) string {
			return strings.ReplaceAll(line, "<version>1.2.3-SNAPSHOT</version>", "<version>1.2.3</version>")
		})
		require.NoError(t, err)
		require.True(t, changed)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "<version>1.2.3</version>\n<name>x</name>\n", string(data))
	})

	t.Run("preserves terminators and a missing final newline", func(t *testing.T) {
		_, path := writeTemp(t, "a\r\nb\nc")

		changed, err := fileupdater.ProcessFile(path, strings.ToUpper)
		require.NoError(t, err)
		require.True(t, changed)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "A\r\nB\nC", string(data))
	})

	t.Run("identity never touches the filesystem", func(t *testing.T) {
		dir, path := writeTemp(t, "<version>1.2.3</version>\n")
		past := time.Now().Add(-time.Hour).Truncate(time.Second)
		require.NoError(t, os.Chtimes(path, past, past))

		changed, err := fileupdater.ProcessFile(path, fileupdater.Identity)
		require.NoError(t, err)
		require.False(t, changed)

		info, err := os.Stat(path)
		require.NoError(t, err)
		require.True(t, info.ModTime().Equal(past))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1, "no temporary file may be left behind")
	})

	t.Run("keeps the file mode", func(t *testing.T) {
		_, path := writeTemp(t, "x\n")
		require.NoError(t, os.Chmod(path, 0600))

		_, err := fileupdater.ProcessFile(path, func(string) string { return "y" })
		require.NoError(t, err)

		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := fileupdater.ProcessFile(filepath.Join(t.TempDir(), "nope"), fileupdater.Identity)
		require.Error(t, err)
	})
}
