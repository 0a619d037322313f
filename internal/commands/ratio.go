package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/models"
)

var ratioCmd = &cobra.Command{
	Use:   "ratio",
	Short: "Manage productivity ratios",
}

var ratioSetCmd = &cobra.Command{
	Use:   "set [task-type] [object-type] [rate] [unit]",
	Short: "Create or update one productivity ratio",
	Long: `Create or update the ratio for a (task type, object type) pair.

The rate is quantity per hour in the given unit: AREA (m²/h), LENGTH (m/h)
or COUNT (objects/h). Example:

  crewplan ratio set mowing lawn 500 AREA`,
	Args: cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		rate, err := strconv.ParseFloat(args[2], 64)
		if err != nil || rate <= 0 {
			fmt.Printf("Error: rate must be a positive number, got '%s'\n", args[2])
			return
		}
		unit := strings.ToUpper(args[3])
		switch unit {
		case models.UnitArea, models.UnitLength, models.UnitCount:
		default:
			fmt.Printf("Error: unit must be AREA, LENGTH or COUNT, got '%s'\n", args[3])
			return
		}

		ratio := models.ProductivityRatio{
			TaskType:   args[0],
			ObjectType: args[1],
			Rate:       rate,
			Unit:       unit,
			Active:     true,
		}
		err = db.DB.Where("task_type = ? AND object_type = ?", args[0], args[1]).
			Assign(map[string]any{"rate": rate, "unit": unit, "active": true}).
			FirstOrCreate(&ratio).Error
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Ratio (%s, %s): %.1f %s/h\n", args[0], args[1], rate, unit)
	},
}

var ratioListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List productivity ratios",
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		var ratios []models.ProductivityRatio
		if err := db.DB.Order("task_type, object_type").Find(&ratios).Error; err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if len(ratios) == 0 {
			fmt.Println("No ratios defined. Add one with 'crewplan ratio set'.")
			return
		}
		fmt.Printf("%-15s %-15s %10s %-7s %s\n", "TASK TYPE", "OBJECT TYPE", "RATE", "UNIT", "ACTIVE")
		for _, r := range ratios {
			fmt.Printf("%-15s %-15s %10.1f %-7s %v\n", r.TaskType, r.ObjectType, r.Rate, r.Unit, r.Active)
		}
	},
}

var ratioOffCmd = &cobra.Command{
	Use:   "off [task-type] [object-type]",
	Short: "Deactivate one ratio without deleting it",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		res := db.DB.Model(&models.ProductivityRatio{}).
			Where("task_type = ? AND object_type = ?", args[0], args[1]).
			Update("active", false)
		if res.Error != nil {
			fmt.Printf("Error: %v\n", res.Error)
			return
		}
		if res.RowsAffected == 0 {
			fmt.Printf("No ratio found for (%s, %s)\n", args[0], args[1])
			return
		}
		fmt.Printf("Ratio (%s, %s) deactivated\n", args[0], args[1])
	},
}

func init() {
	ratioCmd.AddCommand(ratioSetCmd)
	ratioCmd.AddCommand(ratioListCmd)
	ratioCmd.AddCommand(ratioOffCmd)
}
