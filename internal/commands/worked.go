package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
)

var workedCmd = &cobra.Command{
	Use:   "worked [task-id]",
	Short: "Show or record worked time on a task",
	Long: `Resolve the hours worked on a task. Sources are tried strongest
first: a manual override, then actual hours on completed slices, then the
labor log, then the estimate, then the planned hours.

  crewplan worked 12                       resolve and show
  crewplan worked 12 --set 6.5 --by rémi   pin a manual value
  crewplan worked 12 --clear               drop the manual value
  crewplan worked 12 --log 2 --worker bob  append a labor entry`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}
		taskID := uint(id)

		if cmd.Flags().Changed("set") {
			hours, _ := cmd.Flags().GetFloat64("set")
			by, _ := cmd.Flags().GetString("by")
			if _, err := db.SetManualHours(taskID, hours, by, time.Now()); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			fmt.Printf("Manual worked time set: %.2fh\n", hours)
			return
		}

		if clear, _ := cmd.Flags().GetBool("clear"); clear {
			if _, err := db.ClearManualHours(taskID); err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			fmt.Println("Manual worked time cleared.")
			return
		}

		if cmd.Flags().Changed("log") {
			hours, _ := cmd.Flags().GetFloat64("log")
			worker, _ := cmd.Flags().GetString("worker")
			note, _ := cmd.Flags().GetString("note")
			entry, err := db.LogLabor(taskID, worker, hours, note)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			fmt.Printf("Logged %.2fh by %s on task #%d\n", entry.Hours, entry.Worker, taskID)
			return
		}

		worked, err := db.ResolveWorkedTime(taskID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if worked.Source == db.SourceNone {
			fmt.Printf("Task #%d has no worked time from any source.\n", taskID)
			return
		}
		reliability := "planning data"
		if worked.Reliable {
			reliability = "observed"
		}
		fmt.Printf("Task #%d: %.2fh worked (source %s, %s)\n",
			taskID, worked.Hours, worked.Source, reliability)

		entries, err := db.GetLaborEntries(taskID)
		if err == nil && len(entries) > 0 {
			fmt.Println("  Labor log:")
			for _, e := range entries {
				line := fmt.Sprintf("    %.2fh %s", e.Hours, e.Worker)
				if e.Note != "" {
					line += " (" + e.Note + ")"
				}
				fmt.Println(line)
			}
		}
	},
}

func init() {
	workedCmd.Flags().Float64("set", 0, "Pin worked hours manually")
	workedCmd.Flags().String("by", "", "Who sets the manual value")
	workedCmd.Flags().Bool("clear", false, "Remove the manual value")
	workedCmd.Flags().Float64("log", 0, "Hours to append to the labor log")
	workedCmd.Flags().String("worker", "", "Worker for --log")
	workedCmd.Flags().String("note", "", "Note for --log")
}
