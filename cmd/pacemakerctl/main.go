// Command pacemakerctl is a single-shot demonstration harness for the
// scheduler package: load a JSON working-set snapshot, run one
// scheduling round, and print the resulting plan or option metadata.
package main

import (
	"fmt"
	"os"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	logLevel string
	json     bool
}

func (f *rootFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	fs.BoolVar(&f.json, "json", false, "emit structured JSON logs")
}

func (f *rootFlags) logger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "pacemakerctl",
		Level:      hclog.LevelFromString(f.logLevel),
		JSONFormat: f.json,
		Output:     os.Stderr,
	})
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "pacemakerctl",
		Short: "Run and inspect the placement/ordering scheduling core",
	}
	flags.register(root.PersistentFlags())

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newValidateCmd(flags))
	root.AddCommand(newMetadataCmd(flags))
	return root
}
