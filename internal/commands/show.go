package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/tui"
)

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show one task with its day slices",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		taskID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}

		task, err := db.GetTaskByID(uint(taskID))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("Task #%d (%s) %s [%s]\n", task.ID, task.Reference, task.TaskType, tui.TaskStatus(task.Status))
		fmt.Printf("  Planned:    %s..%s\n",
			task.PlannedStart.Format("2006-01-02"), task.PlannedEnd.Format("2006-01-02"))
		if task.ActualStart != nil {
			fmt.Printf("  Started:    %s\n", task.ActualStart.Format("2006-01-02 15:04"))
		}
		if task.ActualEnd != nil {
			fmt.Printf("  Finished:   %s\n", task.ActualEnd.Format("2006-01-02 15:04"))
		}
		fmt.Printf("  Priority:   %d\n", task.Priority)
		fmt.Printf("  Validation: %s\n", task.Validation)
		if task.QualityRating != nil {
			fmt.Printf("  Quality:    %d/5\n", *task.QualityRating)
		}
		if len(task.Crews) > 0 {
			var names []string
			for _, c := range task.Crews {
				names = append(names, c.Name)
			}
			fmt.Printf("  Crews:      %s\n", strings.Join(names, ", "))
		}
		if task.Description != "" {
			fmt.Printf("  Desc:       %s\n", task.Description)
		}

		if task.EstimatedHours != nil {
			source := "from ratios"
			if task.ManualEstimate {
				source = "manual"
			}
			fmt.Printf("  Estimate:   %.2fh (%s)\n", *task.EstimatedHours, source)
		}
		worked, err := db.ResolveWorkedTime(task.ID)
		if err == nil && worked.Source != db.SourceNone {
			flag := ""
			if worked.Reliable {
				flag = ", reliable"
			}
			fmt.Printf("  Worked:     %.2fh (%s%s)\n", worked.Hours, worked.Source, flag)
		}

		if len(task.Objects) > 0 {
			fmt.Println("  Objects:")
			for _, o := range task.Objects {
				fmt.Printf("    %s (%s, %s)\n", o.ObjectRef, o.ObjectType, o.Kind)
			}
		}

		if len(task.Distributions) > 0 {
			fmt.Println("  Slices:")
			for _, d := range task.Distributions {
				line := fmt.Sprintf("    #%-4d %s %5.2fh [%s]", d.ID,
					d.Date.Format("2006-01-02"), d.PlannedHours, tui.DistStatus(d.Status))
				if d.StartTime != "" {
					line += fmt.Sprintf(" %s-%s", d.StartTime, d.EndTime)
				}
				if d.ActualHours != nil {
					line += fmt.Sprintf(" actual %.2fh", *d.ActualHours)
				}
				if d.Reason != "" {
					line += fmt.Sprintf(" (%s)", d.Reason)
				}
				fmt.Println(line)
			}
		}
	},
}
