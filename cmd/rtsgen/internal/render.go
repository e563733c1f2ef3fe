package internal

import (
	"fmt"

	"github.com/goplus/rtsgen/pkgs/buildsys/gpr"
	"github.com/goplus/rtsgen/pkgs/profile"
	"github.com/spf13/cobra"
)

var renderProject bool

var renderCmd = &cobra.Command{
	Use:   "render target profile",
	Short: "Print the build configuration of a runtime",
	Long: `Render prints the runtime.xml of the runtime of a target, or its
installation project with --project. Nothing is written.`,
	Args: cobra.ExactArgs(2),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderProject, "project", false, "Print the installation project instead")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	tgt, err := loadTarget(reg, args[0])
	if err != nil {
		return err
	}
	p := profile.Profile(args[1])
	d, ok := tgt.Descriptor(p)
	if !ok {
		return fmt.Errorf("target %s has no profile %s", args[0], p)
	}
	caps := tgt.Capabilities()
	if renderProject {
		_, err = cmd.OutOrStdout().Write(gpr.RenderInstallProject(caps, d))
	} else {
		_, err = cmd.OutOrStdout().Write(gpr.RenderRuntimeXML(caps, d))
	}
	return err
}
