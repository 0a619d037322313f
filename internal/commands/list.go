package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/models"
	"github.com/mgarnier/crewplan/internal/parser"
	"github.com/mgarnier/crewplan/internal/tui"
)

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tasks",
	Run: func(cmd *cobra.Command, args []string) {
		initDB()

		var filter db.TaskFilter
		if s, _ := cmd.Flags().GetString("status"); s != "" {
			filter.Status = models.TaskStatus(strings.ToUpper(s))
		}
		filter.TaskType, _ = cmd.Flags().GetString("type")
		filter.CrewName, _ = cmd.Flags().GetString("crew")
		if on, _ := cmd.Flags().GetString("on"); on != "" {
			day, err := parser.ParseDate(on, time.Now())
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			filter.Day = &day
		}

		tasks, err := db.GetTasks(filter)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return
		}

		fmt.Printf("%-5s %-13s %-12s %-11s %-22s %-4s %s\n",
			"ID", "REF", "TYPE", "STATUS", "PLANNED", "PRI", "CREWS")
		for _, t := range tasks {
			planned := t.PlannedStart.Format("2006-01-02")
			if !models.SameDay(t.PlannedStart, t.PlannedEnd) {
				planned += ".." + t.PlannedEnd.Format("2006-01-02")
			}
			var crews []string
			for _, c := range t.Crews {
				crews = append(crews, c.Name)
			}
			fmt.Printf("%-5d %-13s %-12s %-11s %-22s %-4d %s\n",
				t.ID, t.Reference, t.TaskType, tui.TaskStatus(t.Status),
				planned, t.Priority, strings.Join(crews, ","))
		}
	},
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "Filter by status (PLANNED, LATE, IN_PROGRESS, DONE, EXPIRED, CANCELLED)")
	listCmd.Flags().StringP("type", "t", "", "Filter by task type")
	listCmd.Flags().StringP("crew", "c", "", "Filter by crew name")
	listCmd.Flags().StringP("on", "o", "", "Tasks whose planned range covers a date")
}
