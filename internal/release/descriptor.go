package release

import (
	"fmt"

	relerrors "releasekit.dev/releasekit/internal/errors"
	"releasekit.dev/releasekit/internal/git"
	"releasekit.dev/releasekit/internal/manifest"
)

// DependencySource tells where the platform version is declared in the manifest.
// Property is tried first, then the <version> following the Parent artifact.
type DependencySource struct {
	Property string
	Parent   string
}

// Descriptor identifies the release. Only NextSnapshotVersion may change after resolution.
type Descriptor struct {
	SourceBranch        string
	ReleaseVersion      string
	NextSnapshotVersion string
	ArtifactID          string
	ArtifactName        string
	Description         string
	ProjectURL          string
	DependencyVersion   string
}

// TagName returns the release tag, v<version>
func (d *Descriptor) TagName() string {
	return "v" + d.ReleaseVersion
}

// ReleaseBranch returns the release branch created from branch
func (d *Descriptor) ReleaseBranch(branch string) string {
	return git.ReleaseBranchName(branch, d.ReleaseVersion)
}

// SnapshotVersion returns the next development version with its snapshot marker
func (d *Descriptor) SnapshotVersion() string {
	return d.NextSnapshotVersion + manifest.SnapshotSuffix
}

// ResolveDescriptor reads the release coordinates from the manifest of sourceBranch.
// NextSnapshotVersion is set to the guessed next version.
func ResolveDescriptor(reader manifest.Reader, sourceBranch string, dep DependencySource) (*Descriptor, error) {
	release, err := reader.ReleaseVersion()
	if err != nil {
		return nil, err
	}

	d := &Descriptor{
		SourceBranch:   sourceBranch,
		ReleaseVersion: release,
	}

	fields := []struct {
		tag string
		dst *string
	}{
		{"artifactId", &d.ArtifactID},
		{"name", &d.ArtifactName},
		{"description", &d.Description},
		{"url", &d.ProjectURL},
	}
	for _, f := range fields {
		value, err := reader.Field(f.tag)
		if err != nil {
			return nil, err
		}
		*f.dst = value
	}

	d.DependencyVersion, err = dependencyVersion(reader, dep)
	if err != nil {
		return nil, err
	}
	if manifest.IsSnapshot(d.DependencyVersion) {
		return nil, fmt.Errorf("%w: can not release with a SNAPSHOT dependency %s", relerrors.ErrSnapshotDependency, d.DependencyVersion)
	}

	d.NextSnapshotVersion, err = manifest.GuessSnapshot(release)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func dependencyVersion(reader manifest.Reader, dep DependencySource) (string, error) {
	if dep.Property != "" {
		if version, err := reader.Field(dep.Property); err == nil {
			return version, nil
		}
	}
	if dep.Parent == "" {
		return "", fmt.Errorf("could not find the dependency version: property %s is not declared", dep.Property)
	}
	version, err := reader.FieldAfter("version", fmt.Sprintf("<artifactId>%s</artifactId>", dep.Parent))
	if err != nil {
		return "", fmt.Errorf("could not find the dependency version: %w", err)
	}
	return version, nil
}
