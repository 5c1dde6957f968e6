package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pakk/pkg/modules"
	"github.com/matzehuels/pakk/pkg/project"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List declared and installed dependencies",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := os.Getwd()
			if err != nil {
				return err
			}
			store, err := project.Open(projectDir)
			if err != nil {
				return err
			}

			requested := store.AllRequested()
			installed := store.Installed()

			if len(requested) == 0 && len(installed) == 0 {
				printInfo("No dependencies (add one with 'pakk add <package>')")
				return nil
			}

			fmt.Println(StyleTitle.Render(store.Name()) + " " + StyleDim.Render(store.Version()))

			names := make([]string, 0, len(requested))
			for name := range requested {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				line := "  " + StyleValue.Render(name) + StyleDim.Render("@"+requested[name])
				if v, ok := installed[name]; ok {
					line += " " + StyleHighlight.Render(v)
				} else {
					line += " " + StyleWarning.Render("not installed")
				}
				fmt.Println(line)
			}

			if !all {
				return nil
			}

			// Transitive packages installed without a top-level request.
			reg := modules.NewRegistry(filepath.Join(projectDir, project.ModulesDir))
			mods, _ := reg.LoadAll()
			var extra []string
			for _, m := range mods {
				if _, ok := requested[m.Name]; !ok {
					extra = append(extra, m.Name)
				}
			}
			if len(extra) > 0 {
				fmt.Println(StyleDim.Render("  transitive:"))
				sort.Strings(extra)
				for _, name := range extra {
					v := installed[name]
					fmt.Println("    " + StyleDim.Render(name+" "+v))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include transitive packages")

	return cmd
}
