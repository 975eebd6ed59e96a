package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davesmith10/pngunpeel/internal/config"
)

var version = "dev"

// rootOptions holds the raw flag values; settings merges them over the
// configuration file and environment.
type rootOptions struct {
	configPath  string
	logLevel    string
	logFile     string
	format      string
	seed        uint64
	noNoise     bool
	inflate     bool
	compression int
	noColor     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "unpeel [flags] <file.png>",
		Short:         "Report PNG metadata, add pixel noise and write <name>-unpeeled.png",
		Args:          cobra.ExactArgs(1),
		Version:       version,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnpeel(cmd, opts, args[0])
		},
	}

	def := config.Default()
	f := rootCmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "YAML configuration file (default $UNPEEL_CONFIG)")
	f.StringVar(&opts.logLevel, "log-level", def.LogLevel, "Log level (debug, info, warn, error)")
	f.StringVar(&opts.logFile, "log-file", "", "Also write JSON logs to this rotating file")
	f.StringVar(&opts.format, "format", def.Format, "Report format (text, yaml)")
	f.BoolVar(&opts.inflate, "inflate", false, "Decompress zTXt text and iCCP profiles")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable coloured output")
	rootCmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Noise seed; 0 picks a random one")
	rootCmd.Flags().BoolVar(&opts.noNoise, "no-noise", false, "Re-encode without adding noise")
	rootCmd.Flags().IntVar(&opts.compression, "compression", def.CompressionLevel, "zlib level for the output (-2..9, -1 = default)")

	rootCmd.AddCommand(newIdentifyCmd(opts), newDecodeCmd(opts), newEncodeCmd(opts))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
