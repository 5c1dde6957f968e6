package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install all dependencies declared in pakk.json",
		Long: `Install every dependency declared in pakk.json, including transitive
dependencies, into pakk_modules/.

Dependencies whose installed version already satisfies their spec are
skipped. Use --force to reinstall them anyway.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, store, err := c.newInstaller()
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			if err := inst.InstallAll(cmd.Context(), force); err != nil {
				printError("Some dependencies failed to install")
				return err
			}
			prog.done(fmt.Sprintf("Installed %d dependencies", len(store.AllRequested())))

			printSuccess("Dependencies are up to date")
			printDetail("Modules: %s", inst.ModulesDir())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "reinstall dependencies even if already satisfied")

	return cmd
}
