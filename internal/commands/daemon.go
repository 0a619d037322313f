package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/rs/zerolog"

	"github.com/mgarnier/crewplan/internal/config"
	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/events"
	"github.com/mgarnier/crewplan/internal/logging"
	"github.com/mgarnier/crewplan/internal/reconcile"
)

// logSink publishes domain events as structured log lines.
type logSink struct {
	log zerolog.Logger
}

func (s logSink) Publish(e events.Event) {
	s.log.Info().
		Str("event", e.Type).
		Uint("task_id", e.TaskID).
		Uint("distribution_id", e.DistributionID).
		Str("detail", e.Detail).
		Msg("domain event")
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the reconciliation jobs on a schedule",
	Long: `Run the reconciliation jobs on a schedule until interrupted.

The refresh pass runs on a fixed interval (default every 5 minutes) and the
structural fix pass on a cron spec (default nightly at 02:30). Both come
from the config file; see 'crewplan daemon --help' for the flag overrides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.DatabasePath != "" && databasePath == "" {
			databasePath = cfg.DatabasePath
		}
		if every, _ := cmd.Flags().GetDuration("refresh-every"); every > 0 {
			cfg.Jobs.RefreshEvery = config.Duration{Duration: every}
		}
		if at, _ := cmd.Flags().GetString("fix-at"); at != "" {
			cfg.Jobs.FixAt = at
		}

		if err := db.Initialize(databasePath); err != nil {
			return err
		}
		defer db.Close()

		log := logging.New(cfg.Log.Level, cfg.Log.Pretty)
		var sink events.Sink = logSink{log: log}

		runRefresh := func() {
			r := reconcile.Refresh(db.DB, time.Now())
			for _, err := range r.Errors {
				log.Error().Err(err).Msg("refresh pass error")
			}
			for _, e := range r.Events {
				sink.Publish(e)
			}
			if r.Changed() {
				log.Info().
					Int("slices_late", r.SlicesLate).
					Int("tasks_late", r.TasksLate).
					Int("tasks_expired", r.TasksExpired).
					Int("slices_expired", r.SlicesExpired).
					Msg("refresh pass applied changes")
			} else {
				log.Debug().Msg("refresh pass: nothing to do")
			}
		}
		runFix := func() {
			f := reconcile.Fix(db.DB, time.Now())
			for _, err := range f.Errors {
				log.Error().Err(err).Msg("fix pass error")
			}
			for _, e := range f.Events {
				sink.Publish(e)
			}
			if f.Changed() {
				log.Info().
					Int("stray_cancelled", f.StrayCancelled).
					Int("slices_late", f.SlicesLate).
					Int("slices_created", f.SlicesCreated).
					Int("tasks_completed", f.TasksCompleted).
					Msg("fix pass applied changes")
			} else {
				log.Debug().Msg("fix pass: nothing to do")
			}
		}

		c := cron.New()
		if _, err := c.AddFunc(fmt.Sprintf("@every %s", cfg.Jobs.RefreshEvery), runRefresh); err != nil {
			return fmt.Errorf("schedule refresh: %w", err)
		}
		if _, err := c.AddFunc(cfg.Jobs.FixAt, runFix); err != nil {
			return fmt.Errorf("schedule fix (%q): %w", cfg.Jobs.FixAt, err)
		}

		// One pass immediately so a freshly started daemon is consistent.
		runRefresh()
		runFix()

		c.Start()
		log.Info().
			Str("refresh_every", cfg.Jobs.RefreshEvery.String()).
			Str("fix_at", cfg.Jobs.FixAt).
			Msg("daemon started")

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		ctx := c.Stop()
		<-ctx.Done()
		log.Info().Msg("daemon stopped")
		return nil
	},
}

func init() {
	daemonCmd.Flags().String("config", "", "Config file (default ~/.crewplan/config.yaml)")
	daemonCmd.Flags().Duration("refresh-every", 0, "Override the refresh interval")
	daemonCmd.Flags().String("fix-at", "", "Override the fix cron spec")
}
