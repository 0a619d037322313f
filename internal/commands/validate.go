package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
)

var validateCmd = &cobra.Command{
	Use:   "validate [task-id]",
	Short: "Record the supervisor's verdict on a finished task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		taskID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}

		reject, _ := cmd.Flags().GetBool("reject")
		comment, _ := cmd.Flags().GetString("comment")

		var rating *int
		if cmd.Flags().Changed("rating") {
			r, _ := cmd.Flags().GetInt("rating")
			rating = &r
		}

		task, _, err := db.ValidateTask(uint(taskID), !reject, rating, comment, time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		if reject {
			fmt.Printf("❌ Task #%d rejected\n", task.ID)
		} else {
			fmt.Printf("✅ Task #%d approved\n", task.ID)
		}
		if rating != nil {
			fmt.Printf("  Quality: %d/5\n", *rating)
		}
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm [task-id]",
	Short: "Delete a task (soft delete, recoverable in the database)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		taskID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}

		if _, err := db.DeleteTask(uint(taskID), time.Now()); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("🗑️  Deleted task #%d\n", taskID)
	},
}

func init() {
	validateCmd.Flags().Bool("reject", false, "Reject instead of approving")
	validateCmd.Flags().IntP("rating", "r", 0, "Quality rating 1-5")
	validateCmd.Flags().StringP("comment", "m", "", "Validation comment")
}
