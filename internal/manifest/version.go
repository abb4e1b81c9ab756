package manifest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SnapshotSuffix marks an unreleased version
const SnapshotSuffix = "-SNAPSHOT"

var digitsPattern = regexp.MustCompile(`\d+`)

// SplitVersionToDigits returns every run of digits in version, "2.5.0-beta1" is [2 5 0 1]
func SplitVersionToDigits(version string) []int {
	var digits []int
	for _, s := range digitsPattern.FindAllString(version, -1) {
		n, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		digits = append(digits, n)
	}
	return digits
}

// IsSnapshot reports whether version carries the snapshot marker
func IsSnapshot(version string) bool {
	return strings.Contains(version, SnapshotSuffix)
}

// ReleaseVersionOf strips the snapshot marker
func ReleaseVersionOf(version string) string {
	return strings.TrimSuffix(version, SnapshotSuffix)
}

// GuessSnapshot guesses the next development version by incrementing the third digit.
// Any qualifier is kept: "2.5.0.Beta1" becomes "2.5.1.Beta1".
func GuessSnapshot(version string) (string, error) {
	digits := SplitVersionToDigits(version)
	if len(digits) < 3 {
		return "", fmt.Errorf("version %q needs at least three digits to guess the next snapshot", version)
	}
	source := fmt.Sprintf("%d.%d.%d", digits[0], digits[1], digits[2])
	destination := fmt.Sprintf("%d.%d.%d", digits[0], digits[1], digits[2]+1)
	if !strings.Contains(version, source) {
		return "", fmt.Errorf("version %q is not of the form major.minor.patch", version)
	}
	return strings.Replace(version, source, destination, 1), nil
}
