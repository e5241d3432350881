package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dlightman/minitelctl/internal/logging"
	"github.com/dlightman/minitelctl/internal/mission"
	"github.com/dlightman/minitelctl/internal/session"
	"github.com/dlightman/minitelctl/internal/transport"
)

var (
	runHost        string
	runPort        int
	runTimeout     float64
	runRecord      bool
	runSessionsDir string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one override-code retrieval mission",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("host") {
			cfg.Host = runHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = runPort
		}
		if cmd.Flags().Changed("timeout") {
			cfg.TimeoutSeconds = runTimeout
		}
		if cmd.Flags().Changed("record") {
			cfg.Record = runRecord
		}
		if cmd.Flags().Changed("sessions-dir") {
			cfg.SessionsDir = runSessionsDir
		}
		if !verbose {
			if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
				logging.SetLevel(lvl)
			}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		var rec *session.Recorder
		var missionRec mission.Recorder
		if cfg.Record {
			rec = session.NewRecorder()
			missionRec = rec
		}

		tcfg := transport.Config{
			Address:        cfg.Address(),
			ConnectTimeout: cfg.Timeout(),
			IOTimeout:      cfg.Timeout(),
		}
		dialer := mission.DialerFunc(func(ctx context.Context) (mission.Conn, error) {
			return transport.Dial(ctx, tcfg)
		})

		log.Info().Str("address", cfg.Address()).Msg("starting mission")
		result, runErr := mission.New(dialer, missionRec).Run(cmd.Context())

		if rec != nil {
			if path, saveErr := rec.Save(cfg.SessionsDir); saveErr != nil {
				log.Warn().Err(saveErr).Msg("session save failed")
			} else {
				summary := rec.Summary()
				log.Info().Str("path", path).
					Int("interactions", summary.TotalInteractions).
					Msg("session saved")
			}
		}

		if runErr != nil {
			return runErr
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OVERRIDE CODE: %s\n", result.OverrideCode)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runHost, "host", "", "server hostname or IP address")
	runCmd.Flags().IntVar(&runPort, "port", 0, "server port number")
	runCmd.Flags().Float64Var(&runTimeout, "timeout", 2.0, "I/O timeout in seconds")
	runCmd.Flags().BoolVar(&runRecord, "record", false, "record the session to disk")
	runCmd.Flags().StringVar(&runSessionsDir, "sessions-dir", "sessions", "directory for recorded sessions")
	rootCmd.AddCommand(runCmd)
}
