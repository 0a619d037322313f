package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/reconcile"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run the reconciliation jobs once",
	Long: `Run the reconciliation jobs once and report what changed.

The refresh pass derives lateness and expiry from the clock; the fix pass
repairs structural drift between tasks and their slices. Both are
idempotent: running them twice in a row changes nothing the second time.`,
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		now := time.Now()

		refreshOnly, _ := cmd.Flags().GetBool("refresh-only")
		fixOnly, _ := cmd.Flags().GetBool("fix-only")

		if !fixOnly {
			r := reconcile.Refresh(db.DB, now)
			fmt.Printf("refresh: %d slice(s) late, %d task(s) late, %d task(s) expired, %d slice(s) expiry-cancelled\n",
				r.SlicesLate, r.TasksLate, r.TasksExpired, r.SlicesExpired)
			for _, err := range r.Errors {
				fmt.Printf("  error: %v\n", err)
			}
		}
		if !refreshOnly {
			f := reconcile.Fix(db.DB, now)
			fmt.Printf("fix: %d stray slice(s) cancelled, %d slice(s) late, %d missing slice(s) created, %d task(s) completed\n",
				f.StrayCancelled, f.SlicesLate, f.SlicesCreated, f.TasksCompleted)
			for _, err := range f.Errors {
				fmt.Printf("  error: %v\n", err)
			}
		}
	},
}

func init() {
	reconcileCmd.Flags().Bool("refresh-only", false, "Run only the clock-driven refresh pass")
	reconcileCmd.Flags().Bool("fix-only", false, "Run only the structural fix pass")
}
