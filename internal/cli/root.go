package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// releaseFlags are the flags of the root command
type releaseFlags struct {
	branch      string
	skipTests   bool
	remote      string
	publish     bool
	disableMail bool
	check       bool
	yes         bool
	nextVersion string
}

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	flags := &releaseFlags{}

	rootCmd := &cobra.Command{
		Use:   "releasekit",
		Short: "Release an Elasticsearch plugin from a maintenance branch",
		Long: `Release an Elasticsearch plugin from a maintenance branch.

The release strips the -SNAPSHOT suffix from the pom.xml, updates the README.md,
builds and checks the artifact, tags the release, moves the branch to the next
snapshot version and, with --publish, pushes the changes, uploads the artifact
and sends the announcement.

Without --publish the release is a dry run: every change is made locally and
reset once the run is over.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRelease(cmd, flags)
		},
	}
	rootCmd.SetVersionTemplate(versionString(version, commit, date))

	rootCmd.PersistentFlags().StringP("directory", "C", ".", "Run as if started in this directory")

	rootCmd.Flags().StringVarP(&flags.branch, "branch", "b", "", "The branch to release (defaults to the current branch)")
	rootCmd.Flags().BoolVarP(&flags.skipTests, "skiptests", "t", false, "Skip tests before release")
	rootCmd.Flags().StringVarP(&flags.remote, "remote", "r", "", "The remote to push the release commit and tag to (defaults to origin)")
	rootCmd.Flags().BoolVarP(&flags.publish, "publish", "p", false, "Push and publish the release instead of a dry run")
	rootCmd.Flags().BoolVar(&flags.disableMail, "disable-mail", false, "Do not send the release announcement")
	rootCmd.Flags().BoolVar(&flags.check, "check", false, "Check the environment and command line tools, then exit")
	rootCmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Answer every prompt with its default")
	rootCmd.Flags().StringVar(&flags.nextVersion, "next-version", "", "The next development version (defaults to the guessed snapshot version)")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newRecoverCmd())

	return rootCmd
}

func versionString(version, commit, date string) string {
	s := fmt.Sprintf("releasekit version %s\n", version)
	if commit != "" && commit != "none" {
		s += fmt.Sprintf("commit: %s\n", commit)
	}
	if date != "" && date != "unknown" {
		s += fmt.Sprintf("built at: %s\n", date)
	}
	return s
}
