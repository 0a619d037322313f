package commands

import (
	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var databasePath string

var rootCmd = &cobra.Command{
	Use:   "crewplan",
	Short: "Task scheduling and workload distribution for field crews",
	Long: `crewplan plans field maintenance work: tasks with per-day workload
slices, estimates derived from productivity ratios, recurring series, and
reconciliation jobs that keep statuses honest against the clock.`,
}

// initDB initializes the database and panics on error
func initDB() {
	if err := db.Initialize(databasePath); err != nil {
		panic(err)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "", "Database file (default ~/.crewplan/crewplan.db)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(finishCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(cancelSliceCmd)
	rootCmd.AddCommand(restoreSliceCmd)
	rootCmd.AddCommand(rescheduleCmd)
	rootCmd.AddCommand(recurCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(workedCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(ratioCmd)
	rootCmd.AddCommand(crewCmd)
	rootCmd.AddCommand(holidayCmd)
	rootCmd.AddCommand(versionCmd)
}
