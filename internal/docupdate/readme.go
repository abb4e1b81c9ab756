// Package docupdate rewrites the release related lines of a plugin README.md.
package docupdate

import (
	"fmt"
	"regexp"
	"strings"

	"releasekit.dev/releasekit/internal/fileupdater"
	"releasekit.dev/releasekit/internal/manifest"
)

const (
	// DefaultProduct is the product named in version headers
	DefaultProduct = "Elasticsearch"
	// DefaultNamespace is the plugin namespace used in install instructions
	DefaultNamespace = "elasticsearch"
)

// README is a plugin documentation file.
//
// The file is expected to carry a header such as
//
//	## Version 2.5.0-SNAPSHOT for Elasticsearch: 5.0
//
// an install line and a version table with one row per maintained branch.
type README struct {
	Path      string
	Product   string
	Namespace string
}

// NewREADME returns a README using the default product and namespace
func NewREADME(path string) *README {
	return &README{Path: path, Product: DefaultProduct, Namespace: DefaultNamespace}
}

// SetVersionHeader rewrites the version header to version, labelled with the
// major.minor of the dependency version
func (r *README) SetVersionHeader(version, dependencyVersion string) (bool, error) {
	pattern := regexp.MustCompile(fmt.Sprintf(`## Version (.)+ for %s: (.)+`, regexp.QuoteMeta(r.product())))
	dep := manifest.SplitVersionToDigits(dependencyVersion)
	replacement := fmt.Sprintf("## Version %s for %s: %d.%d", version, r.product(), digit(dep, 0), digit(dep, 1))

	return fileupdater.ProcessFile(r.Path, func(line string) string {
		if pattern.MatchString(line) {
			return replacement
		}
		return line
	})
}

// SetReleasedVersionRow replaces the version table row of branch with a link to the released docs
func (r *README) SetReleasedVersionRow(projectURL, release, branch, dependencyVersion string) (bool, error) {
	replacement := TableRow(projectURL, release, branch, Anchor(r.product(), release, dependencyVersion))

	return fileupdater.ProcessFile(r.Path, func(line string) string {
		if strings.Contains(line, branch) {
			return replacement
		}
		return line
	})
}

// SetInstallInstructions points the install line at the released version
func (r *README) SetInstallInstructions(artifactID, release string) (bool, error) {
	prefix := r.namespace() + "/" + artifactID
	pattern := regexp.MustCompile(fmt.Sprintf(`bin/plugin -?install %s/.+`, regexp.QuoteMeta(prefix)))
	replacement := fmt.Sprintf("bin/plugin install %s/%s", prefix, release)

	return fileupdater.ProcessFile(r.Path, func(line string) string {
		return pattern.ReplaceAllLiteralString(line, replacement)
	})
}

// TableRow formats a version table row linking to the documentation of release
func TableRow(projectURL, release, branch, anchor string) string {
	return fmt.Sprintf("|    %s              |     %s         | [%s](%stree/v%s/%s)                  |",
		branch, release, release, projectURL, release, anchor)
}

// DocAnchor returns the generated documentation anchor for a release header,
// "#version-250-for-elasticsearch-50" for release 2.5.0 on Elasticsearch 5.0.0
func DocAnchor(release, dependencyVersion string) string {
	return Anchor(DefaultProduct, release, dependencyVersion)
}

// Anchor is DocAnchor for another product name
func Anchor(product, release, dependencyVersion string) string {
	rel := manifest.SplitVersionToDigits(release)
	dep := manifest.SplitVersionToDigits(dependencyVersion)
	return fmt.Sprintf("#version-%d%d%d-for-%s-%d%d",
		digit(rel, 0), digit(rel, 1), digit(rel, 2),
		strings.ToLower(product), digit(dep, 0), digit(dep, 1))
}

func digit(digits []int, i int) int {
	if i < len(digits) {
		return digits[i]
	}
	return 0
}

func (r *README) product() string {
	if r.Product == "" {
		return DefaultProduct
	}
	return r.Product
}

func (r *README) namespace() string {
	if r.Namespace == "" {
		return DefaultNamespace
	}
	return r.Namespace
}
