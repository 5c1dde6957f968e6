package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// publishCommand creates the publish command.
func (c *CLI) publishCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Package the current project for release",
		Long: `Create a release archive of the current project in .pakk_cache/,
named <name>-<version>.zip from the fields in pakk.json. Version
control and install directories (.git, pakk_modules, caches) are
excluded.

Uploading the archive to a registry repository is a separate, manual
step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := os.Getwd()
			if err != nil {
				return err
			}

			inst, store, err := c.newInstaller()
			if err != nil {
				return err
			}

			out, err := inst.Publish(projectDir)
			if err != nil {
				printError("Failed to package %s", store.Name())
				return err
			}

			printSuccess("Packaged %s@%s", store.Name(), store.Version())
			printFile(out)
			printDetail("Upload this archive to your registry repository to publish")
			return nil
		},
	}
}
