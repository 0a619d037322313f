package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/parser"
)

var addCmd = &cobra.Command{
	Use:   "add [task-type]",
	Short: "Plan a new task",
	Long: `Plan a new task of the given type on a date.

Examples:
  crewplan add mowing --on tomorrow --crew north
  crewplan add pruning --on 2026-03-09 --object "TREE-17:tree:point" --crew north
  crewplan add mowing --on 09/03/2026 --day "2026-03-09=4@08:00-12:00,2026-03-10=4"
  crewplan add weeding --on today --hours 6

Without --hours the estimate comes from the productivity ratios of the
linked objects; without --day the slices are planned from the estimate and
the crew's calendar.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		now := time.Now()

		on, _ := cmd.Flags().GetString("on")
		date, err := parser.ParseDate(on, now)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		req := db.CreateTaskRequest{
			TaskType: args[0],
			Date:     date,
		}
		req.Priority, _ = cmd.Flags().GetInt("priority")
		req.Description, _ = cmd.Flags().GetString("desc")
		req.Comments, _ = cmd.Flags().GetString("note")
		req.CrewNames, _ = cmd.Flags().GetStringSlice("crew")

		if cmd.Flags().Changed("hours") {
			hours, _ := cmd.Flags().GetFloat64("hours")
			if hours < 0 {
				fmt.Println("Error: --hours cannot be negative")
				return
			}
			req.ManualHours = &hours
		}

		objectSpecs, _ := cmd.Flags().GetStringArray("object")
		for _, spec := range objectSpecs {
			obj, err := parser.ParseObject(spec)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			req.Objects = append(req.Objects, obj)
		}

		if daySpec, _ := cmd.Flags().GetString("day"); daySpec != "" {
			slices, err := parser.ParseDaySlices(daySpec, now)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			for _, s := range slices {
				req.Slices = append(req.Slices, db.DaySpec{
					Date:      s.Date,
					Hours:     s.Hours,
					StartTime: s.StartTime,
					EndTime:   s.EndTime,
				})
			}
		}

		task, evts, err := db.CreateTask(req)
		if err != nil {
			fmt.Printf("Error creating task: %v\n", err)
			return
		}

		fmt.Printf("Created task #%d (%s): %s on %s\n", task.ID, task.Reference,
			task.TaskType, task.PlannedStart.Format("2006-01-02"))
		if task.EstimatedHours != nil {
			source := "estimated"
			if task.ManualEstimate {
				source = "manual"
			}
			fmt.Printf("  Hours: %.2f (%s)\n", *task.EstimatedHours, source)
		}
		if len(task.Crews) > 0 {
			var names []string
			for _, c := range task.Crews {
				names = append(names, c.Name)
			}
			fmt.Printf("  Crews: %s\n", strings.Join(names, ", "))
		}
		for _, d := range task.Distributions {
			fmt.Printf("  Slice #%d: %s %.2fh %s\n", d.ID,
				d.Date.Format("2006-01-02"), d.PlannedHours, d.Status)
		}
		for _, e := range evts {
			if strings.HasPrefix(e.Detail, "warning: ") {
				fmt.Printf("⚠️  %s\n", strings.TrimPrefix(e.Detail, "warning: "))
			}
		}
	},
}

func init() {
	addCmd.Flags().StringP("on", "o", "today", "Planned date: 2026-03-09, 09/03/2026, today, tomorrow, +3d")
	addCmd.Flags().IntP("priority", "p", 0, "Priority 1 (highest) to 5")
	addCmd.Flags().StringSliceP("crew", "c", []string{}, "Assigned crew names")
	addCmd.Flags().Float64P("hours", "H", 0, "Manual hour estimate (overrides ratios)")
	addCmd.Flags().StringArrayP("object", "O", []string{}, "Inventory object: ref:type:kind[:measure[:lat]]")
	addCmd.Flags().StringP("day", "d", "", "Day slices: date=hours[@hh:mm-hh:mm],...")
	addCmd.Flags().StringP("desc", "", "", "Description")
	addCmd.Flags().StringP("note", "", "", "Internal comment")
}
