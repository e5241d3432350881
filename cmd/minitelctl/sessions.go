package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dlightman/minitelctl/internal/session"
)

var sessionsDir string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := session.List(sessionsDir)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no recorded sessions")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tRECORDED\tDURATION\tINTERACTIONS")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%s\t%.2fs\t%d\n",
				info.SessionID, info.RecordedAt, info.Duration, info.TotalInteractions)
		}
		return w.Flush()
	},
}

func init() {
	sessionsCmd.Flags().StringVar(&sessionsDir, "sessions-dir", "sessions", "directory of recorded sessions")
	rootCmd.AddCommand(sessionsCmd)
}
