package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/estimate"
	"github.com/mgarnier/crewplan/internal/models"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate [task-id]",
	Short: "Show or recompute a task's hour estimate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		taskID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}

		if reset, _ := cmd.Flags().GetBool("reset"); reset {
			task, err := db.ResetEstimate(uint(taskID))
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			if task.EstimatedHours != nil {
				fmt.Printf("Estimate recomputed: %.2fh\n", *task.EstimatedHours)
			} else {
				fmt.Println("Estimate cleared: no covering ratios.")
			}
			return
		}

		task, err := db.GetTaskByID(uint(taskID))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		var ratios []models.ProductivityRatio
		if err := db.DB.Where("task_type = ? AND active = ?", task.TaskType, true).Find(&ratios).Error; err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		result := estimate.Hours(task.TaskType, task.Objects, ratios)
		if task.ManualEstimate && task.EstimatedHours != nil {
			fmt.Printf("Manual estimate: %.2fh (ratios would give %.2fh)\n",
				*task.EstimatedHours, result.Hours)
		} else {
			fmt.Printf("Estimate: %.2fh\n", result.Hours)
		}

		for _, g := range result.ByType {
			fmt.Printf("  %-12s %10.2f %-4s / %.1f = %6.2fh\n",
				g.ObjectType, g.Quantity, g.Unit, g.Rate, g.Hours)
		}
		for _, w := range result.Warnings {
			fmt.Printf("⚠️  %s\n", w)
		}
		if len(task.Objects) == 0 {
			fmt.Println("No objects linked; nothing to estimate from.")
		}
	},
}

func init() {
	estimateCmd.Flags().Bool("reset", false, "Drop a manual override and recompute from ratios")
}
