package cli

import (
	"github.com/spf13/cobra"
)

// removeCommand creates the remove command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <package>",
		Aliases: []string{"rm"},
		Short:   "Remove a dependency",
		Long: `Remove a package from pakk.json and delete its directory under
pakk_modules/. Transitive dependencies it pulled in are left in place;
a later install does not re-add them unless something still requires
them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			inst, store, err := c.newInstaller()
			if err != nil {
				return err
			}

			if err := inst.RemovePackage(name); err != nil {
				return err
			}
			if err := store.RemoveEntry(name); err != nil {
				return err
			}

			printSuccess("Removed %s", name)
			return nil
		},
	}
}
