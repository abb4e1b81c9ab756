// Package fileupdater rewrites text files one line at a time.
//
// ProcessFile is the primitive every manifest and documentation edit is built on:
// the new content is written to a temporary file next to the original and renamed
// over it, and nothing on disk is touched when no line changes.
package fileupdater

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/moby/sys/atomicwriter"
)

// LineFunc maps a line (without its terminator) to its replacement
type LineFunc func(line string) string

// Identity returns every line unchanged
func Identity(line string) string {
	return line
}

// ProcessFile applies fn to every line of path and reports whether the file changed.
// Line terminators ("\n" or "\r\n") are preserved.
func ProcessFile(path string, fn LineFunc) (bool, error) {
	if fn == nil {
		fn = Identity
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	out, modified, err := rewrite(f, fn)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !modified {
		return false, nil
	}

	if err := atomicwriter.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return true, nil
}

func rewrite(r io.Reader, fn LineFunc) ([]byte, bool, error) {
	var out bytes.Buffer
	modified := false

	reader := bufio.NewReader(r)
	for {
		raw, err := reader.ReadString('\n')
		if raw != "" {
			line, eol := splitTerminator(raw)
			newLine := fn(line)
			if newLine != line {
				modified = true
			}
			out.WriteString(newLine)
			out.WriteString(eol)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
	}

	return out.Bytes(), modified, nil
}

func splitTerminator(raw string) (string, string) {
	switch {
	case strings.HasSuffix(raw, "\r\n"):
		return raw[:len(raw)-2], "\r\n"
	case strings.HasSuffix(raw, "\n"):
		return raw[:len(raw)-1], "\n"
	default:
		return raw, ""
	}
}
