package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/models"
	"github.com/mgarnier/crewplan/internal/parser"
)

var holidayCmd = &cobra.Command{
	Use:   "holiday",
	Short: "Manage holidays (no crew works on them)",
}

var holidayAddCmd = &cobra.Command{
	Use:   "add [date] [label...]",
	Short: "Declare a holiday",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		date, err := parser.ParseDate(args[0], time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		label := strings.Join(args[1:], " ")

		holiday := models.Holiday{Date: date, Label: label, Active: true}
		err = db.DB.Where("date = ?", date).
			Assign(map[string]any{"label": label, "active": true}).
			FirstOrCreate(&holiday).Error
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Holiday on %s", date.Format("2006-01-02"))
		if label != "" {
			fmt.Printf(": %s", label)
		}
		fmt.Println()
	},
}

var holidayListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List holidays",
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		var holidays []models.Holiday
		if err := db.DB.Where("active = ?", true).Order("date").Find(&holidays).Error; err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if len(holidays) == 0 {
			fmt.Println("No holidays declared.")
			return
		}
		for _, h := range holidays {
			line := h.Date.Format("2006-01-02")
			if h.Label != "" {
				line += "  " + h.Label
			}
			fmt.Println(line)
		}
	},
}

func init() {
	holidayCmd.AddCommand(holidayAddCmd)
	holidayCmd.AddCommand(holidayListCmd)
}
