package cli

import (
	"github.com/spf13/cobra"
)

// updateCommand creates the update command.
func (c *CLI) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update [package]",
		Short: "Update dependencies to the best available version",
		Long: `Re-resolve and reinstall dependencies at the best version currently
satisfying their declared spec. This is the only command that
re-fetches a package whose installed version already satisfies its
spec.

With a package argument, only that dependency is updated; without one,
every declared dependency is.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, store, err := c.newInstaller()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				name := args[0]
				if err := inst.UpdatePackage(cmd.Context(), name); err != nil {
					return err
				}
				if v, ok := store.InstalledVersion(name); ok {
					printSuccess("Updated %s@%s", name, v)
				} else {
					printSuccess("Updated %s", name)
				}
				return nil
			}

			prog := newProgress(c.Logger)
			if err := inst.UpdateAll(cmd.Context()); err != nil {
				printError("Some dependencies failed to update")
				return err
			}
			prog.done("Updated all dependencies")

			printSuccess("Dependencies are up to date")
			return nil
		},
	}
}
