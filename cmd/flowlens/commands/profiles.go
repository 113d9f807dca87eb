package commands

import (
	"fmt"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/flowlens/flowlens/engine/profile"
	"github.com/spf13/cobra"
)

// profilesCmd represents the profiles command
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the built-in language profiles",
	Long: `Profiles lists the language profiles a snippet can be analyzed against.
Each profile is a set of line-shape rules for one surface syntax; the
analyzer falls back to the default profile when an unknown id is
requested.`,
	Example: `  # List the available profiles
  flowlens profiles

  # Analyze against a specific profile
  flowlens analyze loop.py --profile python`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry := profile.NewRegistry()

		// Create tabwriter for aligned output
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

		header := strings.Join([]string{"ID", "NAME", "DESCRIPTION"}, "\t")
		fmt.Fprintf(w, "%s\n", header)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(header)))

		for _, p := range registry.List() {
			id := p.ID
			if id == profile.DefaultID {
				id += " (default)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", id, p.Name, p.Description)
		}

		return w.Flush()
	},
}

var initProfilesOnce sync.Once

// InitProfilesCommand registers the profiles command
func InitProfilesCommand() {
	initProfilesOnce.Do(func() {
		rootCmd.AddCommand(profilesCmd)
	})
}
