package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the targets of the catalogue",
	Args:  cobra.NoArgs,
	RunE:  runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, name := range reg.Names() {
		caps, err := reg.Capabilities(name)
		if err != nil {
			return err
		}
		triple := caps.Triple
		if triple == "" {
			triple = "native"
		}
		var profiles []string
		for _, p := range caps.ProfileNames() {
			if p.IsStable() {
				profiles = append(profiles, string(p))
			} else {
				profiles = append(profiles, string(p)+"*")
			}
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", name, triple, strings.Join(profiles, " "))
	}
	return nil
}
