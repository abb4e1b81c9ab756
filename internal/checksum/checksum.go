// Package checksum writes digest files next to release artifacts.
package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
)

// Algorithm is a digest written as <artifact>.<Extension>
type Algorithm struct {
	Extension string
	New       func() hash.Hash
}

// Algorithms are the digests published with every artifact
var Algorithms = []Algorithm{
	{Extension: "sha1", New: sha1.New},
	{Extension: "md5", New: md5.New},
}

// Generate writes one checksum file per algorithm in the sha1sum format
// ("<hex>  <basename>\n") and returns the artifact followed by the checksum files
func Generate(path string) ([]string, error) {
	files := []string{path}
	for _, algo := range Algorithms {
		sum, err := Sum(path, algo.New())
		if err != nil {
			return nil, err
		}
		out := path + "." + algo.Extension
		line := fmt.Sprintf("%s  %s\n", sum, filepath.Base(path))
		if err := os.WriteFile(out, []byte(line), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", out, err)
		}
		files = append(files, out)
	}
	return files, nil
}

// Sum returns the hex digest of the file at path
func Sum(path string, h hash.Hash) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read artifact: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
