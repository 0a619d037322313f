package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/events"
	"github.com/mgarnier/crewplan/internal/parser"
)

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule [task-id] [date or date..date]",
	Short: "Move a task to new planned dates",
	Long: `Move a task to new planned dates. Slices that the expiry sweep had
cancelled are restored, and remaining open slices shift with the dates.
Works on past dates too: an expired task can be rescheduled backwards to
reflect work that actually happened.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		taskID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}
		start, end, err := parser.ParseDateRange(args[1], time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		task, evts, err := db.RescheduleTask(uint(taskID), start, end, time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("📅 Rescheduled task #%d to %s..%s [%s]\n", task.ID,
			task.PlannedStart.Format("2006-01-02"), task.PlannedEnd.Format("2006-01-02"), task.Status)
		restored, repaired := 0, 0
		for _, e := range evts {
			switch e.Type {
			case events.DistributionRestored:
				restored++
			case events.DistributionRepaired:
				repaired++
			}
		}
		if restored > 0 {
			fmt.Printf("  Restored %d cancelled slice(s)\n", restored)
		}
		if repaired > 0 {
			fmt.Printf("  Created %d slice(s) to cover the new range\n", repaired)
		}
	},
}
