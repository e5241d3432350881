package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dlightman/minitelctl/internal/config"
	"github.com/dlightman/minitelctl/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "minitelctl",
	Short: "MiniTel-Lite mission client",
	Long: `minitelctl talks MiniTel-Lite v3.0 over a single TCP connection:
HELLO authentication, two PROBE commands (the first is refused by design),
and a terminating STOP. A successful run prints the retrieved override code.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.ConfigureRuntime()
		if verbose {
			logging.SetLevel(zerolog.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "client config file (TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig resolves the base config before flag overrides.
func loadConfig() (config.ClientConfig, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}
