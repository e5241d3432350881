package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dlightman/minitelctl/internal/session"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print client and protocol versions",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "minitelctl %s (%s)\n", version, session.ProtocolVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
