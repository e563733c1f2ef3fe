package internal

import (
	"errors"
	"fmt"

	"github.com/goplus/rtsgen/internal/aggregate"
	"github.com/goplus/rtsgen/internal/env"
	"github.com/goplus/rtsgen/pkgs/rts"
	"github.com/goplus/rtsgen/pkgs/target"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var (
	catalogPath string
	sourcesDir  string
	verbose     bool

	scenarioVars map[string]string
)

var rootCmd = &cobra.Command{
	Use:   "rtsgen",
	Short: "rtsgen generates Ada runtimes for bare-metal targets",
	Long: `rtsgen generates, for each runtime profile a target supports, the sources
and the GPR projects needed to build and install the runtime with gprbuild.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetOutputLevel(log.Ldebug)
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&catalogPath, "catalog", env.Catalog(), "Target catalogue, TOML or YAML (env "+env.CatalogVar+")")
	flags.StringVar(&sourcesDir, "sources", env.Sources(), "Runtime source tree (env "+env.SourcesVar+")")
	flags.StringToStringVar(&scenarioVars, "set", nil, "Override scenario variables, e.g. --set Timer=timer64")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log every written file")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}

func loadRegistry() (*target.Registry, error) {
	if catalogPath == "" {
		return nil, errors.New("no target catalogue: use --catalog or " + env.CatalogVar)
	}
	return target.LoadFile(catalogPath)
}

// loadTarget resolves the target name of the registry, reading its sources
// from the source tree.
func loadTarget(reg *target.Registry, name string) (*rts.Target, error) {
	e, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	caps, err := e.Resolve()
	if err != nil {
		return nil, err
	}
	tree, err := aggregate.Open(sourcesDir, e, caps)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", name, err)
	}
	return rts.New(caps, rts.Options{
		Aggregator: tree,
		Customize:  rts.Chain(rts.Amendments(e), rts.SetScenarios(scenarioVars)),
	})
}
