package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/parser"
	"github.com/mgarnier/crewplan/internal/recur"
)

var recurCmd = &cobra.Command{
	Use:   "recur [task-id]",
	Short: "Repeat a task on a fixed cadence",
	Long: `Clone a task into a series of future occurrences, each with fresh
PENDING slices. The cadence offset must hold the task's full duration: a
3-day task cannot repeat daily.

Without --count or --until the series runs through December 31 of the
task's year; either bound may cut it shorter, and both together apply the
more restrictive one. A single expansion is capped at 100 occurrences.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		taskID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}

		every, _ := cmd.Flags().GetString("every")
		freq, err := recur.ParseFrequency(every)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		opts := recur.Options{Frequency: freq}
		opts.Count, _ = cmd.Flags().GetInt("count")
		opts.KeepCrews, _ = cmd.Flags().GetBool("keep-crews")
		opts.KeepObjects, _ = cmd.Flags().GetBool("keep-objects")
		if until, _ := cmd.Flags().GetString("until"); until != "" {
			u, err := parser.ParseDate(until, time.Now())
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			opts.Until = &u
		}

		created, err := recur.Expand(db.DB, uint(taskID), opts, time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if len(created) == 0 {
			fmt.Println("No occurrences fit inside the bounds.")
			return
		}

		fmt.Printf("🔁 Created %d occurrence(s) of task #%d:\n", len(created), taskID)
		for _, t := range created {
			fmt.Printf("  #%d %s on %s\n", t.ID, t.Reference, t.PlannedStart.Format("2006-01-02"))
		}
	},
}

func init() {
	recurCmd.Flags().StringP("every", "e", "weekly", "Cadence: daily, weekly, monthly, yearly")
	recurCmd.Flags().IntP("count", "n", 0, "Maximum number of occurrences")
	recurCmd.Flags().StringP("until", "u", "", "Last possible occurrence date")
	recurCmd.Flags().Bool("keep-crews", true, "Assign the same crews to each occurrence")
	recurCmd.Flags().Bool("keep-objects", true, "Link the same objects to each occurrence")
}
