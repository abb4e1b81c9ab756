package manifest

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	relerrors "releasekit.dev/releasekit/internal/errors"
	"releasekit.dev/releasekit/internal/fileupdater"
)

// Reader extracts values from a build manifest
type Reader interface {
	// Field returns the text of the first <tag>...</tag> element
	Field(tag string) (string, error)
	// FieldAfter returns the first <tag>...</tag> element found after a line containing marker
	FieldAfter(tag, marker string) (string, error)
	// ReleaseVersion returns the version carried by the first snapshot version element
	ReleaseVersion() (string, error)
}

// Writer rewrites the project version in a build manifest
type Writer interface {
	// StripSnapshot turns <version>release-SNAPSHOT</version> into <version>release</version>
	StripSnapshot(release string) (bool, error)
	// AddSnapshot turns <version>release</version> into <version>snapshot-SNAPSHOT</version>
	AddSnapshot(release, snapshot string) (bool, error)
}

// ReadWriter is a manifest that can be both read and rewritten
type ReadWriter interface {
	Reader
	Writer
}

var snapshotVersionPattern = regexp.MustCompile(`<version>(.+)-SNAPSHOT</version>`)

// POM is a pom.xml manipulated through line patterns
type POM struct {
	Path string
}

// NewPOM returns a POM for the file at path
func NewPOM(path string) *POM {
	return &POM{Path: path}
}

// Field returns the first value of tag
func (p *POM) Field(tag string) (string, error) {
	return p.find(tag, "")
}

// FieldAfter returns the first value of tag after marker
func (p *POM) FieldAfter(tag, marker string) (string, error) {
	return p.find(tag, marker)
}

// ReleaseVersion returns the version to release, the first X in <version>X-SNAPSHOT</version>
func (p *POM) ReleaseVersion() (string, error) {
	var version string
	err := p.scan(func(line string) bool {
		if m := snapshotVersionPattern.FindStringSubmatch(line); m != nil {
			version = m[1]
			return true
		}
		return false
	})
	if err != nil {
		return "", err
	}
	if version == "" {
		return "", fmt.Errorf("%w: no snapshot version in %s", relerrors.ErrVersionNotFound, p.Path)
	}
	return version, nil
}

// StripSnapshot moves the manifest from a snapshot to the release version
func (p *POM) StripSnapshot(release string) (bool, error) {
	pattern := fmt.Sprintf("<version>%s-SNAPSHOT</version>", release)
	replacement := fmt.Sprintf("<version>%s</version>", release)
	return fileupdater.ProcessFile(p.Path, func(line string) string {
		return strings.ReplaceAll(line, pattern, replacement)
	})
}

// AddSnapshot moves the manifest from the release to the next snapshot version
func (p *POM) AddSnapshot(release, snapshot string) (bool, error) {
	pattern := fmt.Sprintf("<version>%s</version>", release)
	replacement := fmt.Sprintf("<version>%s-SNAPSHOT</version>", snapshot)
	return fileupdater.ProcessFile(p.Path, func(line string) string {
		return strings.ReplaceAll(line, pattern, replacement)
	})
}

func (p *POM) find(tag, marker string) (string, error) {
	pattern := regexp.MustCompile(fmt.Sprintf(`<%s>(.+)</%s>`, regexp.QuoteMeta(tag), regexp.QuoteMeta(tag)))
	armed := marker == ""

	var value string
	found := false
	err := p.scan(func(line string) bool {
		if armed {
			if m := pattern.FindStringSubmatch(line); m != nil {
				value = m[1]
				found = true
				return true
			}
		}
		if !armed && strings.Contains(line, marker) {
			armed = true
		}
		return false
	})
	if err != nil {
		return "", err
	}
	if !found {
		if marker != "" {
			return "", fmt.Errorf("could not find %s in %s after %s", tag, p.Path, marker)
		}
		return "", fmt.Errorf("could not find %s in %s", tag, p.Path)
	}
	return value, nil
}

// scan calls fn for each line until it returns true
func (p *POM) scan(fn func(line string) bool) error {
	f, err := os.Open(p.Path)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if fn(scanner.Text()) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	return nil
}
