package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dlightman/minitelctl/internal/replay"
	"github.com/dlightman/minitelctl/internal/session"
)

var replayDir string

var replayCmd = &cobra.Command{
	Use:   "replay [session-file]",
	Short: "Replay a recorded session in the terminal",
	Long:  "Replay a recorded session step by step. Without an argument the newest recorded session is opened.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return replay.Run(args[0])
		}
		infos, err := session.List(replayDir)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			return errors.New("no recorded sessions to replay")
		}
		return replay.Run(infos[0].Path)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayDir, "sessions-dir", "sessions", "directory of recorded sessions")
	rootCmd.AddCommand(replayCmd)
}
