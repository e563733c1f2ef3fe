package internal

import (
	"fmt"

	"github.com/goplus/rtsgen/internal/install"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var (
	installDest         string
	installPrefix       string
	installExperimental bool
	installDigest       bool
)

var installCmd = &cobra.Command{
	Use:   "install target...",
	Short: "Install the runtimes of targets",
	Long: `Install writes the sources and the projects of the runtimes of each target
to the destination directory. Experimental profiles are skipped unless
--experimental is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installDest, "dest", "install", "Destination directory")
	installCmd.Flags().StringVar(&installPrefix, "prefix", "", "Installation directory of the runtimes, default <triple>/lib/gnat")
	installCmd.Flags().BoolVar(&installExperimental, "experimental", false, "Install experimental profiles too")
	installCmd.Flags().BoolVar(&installDigest, "digest", false, "Print a digest of the destination once installed")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	opts := install.Options{
		Destination:  installDest,
		Prefix:       installPrefix,
		Experimental: installExperimental,
	}
	for _, name := range args {
		tgt, err := loadTarget(reg, name)
		if err != nil {
			return err
		}
		res, err := install.Install(tgt, opts)
		if err != nil {
			return fmt.Errorf("failed to install %s: %w", name, err)
		}
		log.Debugf("%s: %d files written", name, len(res.Files))
	}
	if installDigest {
		sum, err := install.Digest(installDest)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), sum)
	}
	return nil
}
