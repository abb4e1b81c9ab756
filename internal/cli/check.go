package cli

import (
	"github.com/spf13/cobra"

	"releasekit.dev/releasekit/internal/envcheck"
)

func newCheckCmd() *cobra.Command {
	var javaVersion string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the environment and command line tools a release needs",
		Long: `Check the environment and command line tools a release needs.

The check covers:
  - Environment: AWS credentials, GitHub credentials, email settings and JAVA_HOME
  - Commands: git, gpg, mvn (or mvn3) and java

Missing optional settings are reported as NOT PRESENT and do not fail the check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			splog, err := newSplog(cmd)
			if err != nil {
				return err
			}
			defer splog.Close()

			_, err = envcheck.Action(cmd.Context(), splog, envcheck.Options{JavaVersion: javaVersion})
			return err
		},
	}

	cmd.Flags().StringVar(&javaVersion, "java-version", "", `Require a java version, e.g. "1.8" or "17"`)

	return cmd
}
