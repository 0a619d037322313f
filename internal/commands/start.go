package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/events"
)

var startCmd = &cobra.Command{
	Use:   "start [slice-id]",
	Short: "Start working on a day slice",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		distID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid slice ID '%s'\n", args[0])
			return
		}

		dist, evts, err := db.StartDistribution(uint(distID), time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("▶️  Started slice #%d (%s) of task #%d\n", dist.ID,
			dist.Date.Format("2006-01-02"), dist.TaskID)
		for _, e := range evts {
			if e.Type == events.TaskStarted {
				fmt.Printf("Task #%d is now IN_PROGRESS\n", e.TaskID)
			}
		}
	},
}

var finishCmd = &cobra.Command{
	Use:     "finish [slice-id]",
	Aliases: []string{"done"},
	Short:   "Complete a day slice, recording the hours worked",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		distID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid slice ID '%s'\n", args[0])
			return
		}

		var actual *float64
		if cmd.Flags().Changed("hours") {
			hours, _ := cmd.Flags().GetFloat64("hours")
			actual = &hours
		}

		dist, evts, err := db.FinishDistribution(uint(distID), actual, time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("✅ Finished slice #%d", dist.ID)
		if dist.ActualHours != nil {
			fmt.Printf(" (%.2fh)", *dist.ActualHours)
		}
		fmt.Println()
		for _, e := range evts {
			if e.Type == events.TaskDone {
				fmt.Printf("🎉 Task #%d is DONE\n", e.TaskID)
			}
		}
	},
}

func init() {
	finishCmd.Flags().Float64P("hours", "H", 0, "Actual hours worked (default: planned hours)")
}
