package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/models"
	"github.com/mgarnier/crewplan/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive task board",
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		load := func() ([]models.Task, error) {
			return db.GetTasks(db.TaskFilter{})
		}
		if err := tui.RunBoard(load); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	},
}
