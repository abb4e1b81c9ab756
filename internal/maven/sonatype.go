package maven

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

const sonatypeServerID = "<id>sonatype-nexus-snapshots</id>"

// SonatypeNoticeText explains how to configure deploy credentials
const SonatypeNoticeText = `NOTE: No sonatype settings detected, make sure you have configured
your sonatype credentials in '~/.m2/settings.xml':

<settings>
...
<servers>
  <server>
    <id>sonatype-nexus-snapshots</id>
    <username>your-jira-id</username>
    <password>your-jira-pwd</password>
  </server>
  <server>
    <id>sonatype-nexus-staging</id>
    <username>your-jira-id</username>
    <password>your-jira-pwd</password>
  </server>
</servers>
...
</settings>`

// SonatypeNotice returns the notice to print when the maven settings in home
// carry no sonatype server, and false when the settings look complete
func SonatypeNotice(home string) (string, bool) {
	f, err := os.Open(filepath.Join(home, ".m2", "settings.xml"))
	if err != nil {
		return SonatypeNoticeText, true
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == sonatypeServerID {
			return "", false
		}
	}
	return SonatypeNoticeText, true
}
