package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pakk/pkg/semver"
)

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <package>[@spec]",
		Short: "Add a dependency and install it",
		Long: `Add a package to pakk.json and install it immediately.

The spec after "@" accepts an exact version ("1.2.3"), a minimum
(">=1.2.0"), a caret range ("^1.2.0"), a tilde range ("~1.2.0"), or
"latest". Omitting the spec means latest.

Examples:
  pakk add leftpad
  pakk add leftpad@1.2.3
  pakk add leftpad@^1.2.0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, specText := splitPackageArg(args[0])

			spec, err := semver.ParseSpec(specText)
			if err != nil {
				return err
			}

			inst, store, err := c.newInstaller()
			if err != nil {
				return err
			}

			if err := store.AddDependency(name, spec.String()); err != nil {
				return err
			}

			if err := inst.InstallPackage(cmd.Context(), name, spec); err != nil {
				printError("Failed to install %s", name)
				return err
			}

			if v, ok := store.InstalledVersion(name); ok {
				printSuccess("Added %s@%s", name, v)
			} else {
				printSuccess("Added %s", name)
			}
			printDetail("Recorded in %s", store.Path())
			return nil
		},
	}
}

// splitPackageArg splits "name@spec" on the last "@" so scoped-style
// names keep working. A missing spec means latest.
func splitPackageArg(arg string) (name, spec string) {
	idx := strings.LastIndex(arg, "@")
	if idx <= 0 {
		return arg, "latest"
	}
	return arg[:idx], arg[idx+1:]
}
