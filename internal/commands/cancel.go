package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/models"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [task-id]",
	Short: "Cancel a task and all its remaining slices",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		taskID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}

		task, _, err := db.CancelTask(uint(taskID), time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("🚫 Cancelled task #%d (%s)\n", task.ID, task.Reference)
	},
}

var cancelSliceCmd = &cobra.Command{
	Use:   "cancel-slice [slice-id]",
	Short: "Cancel one day slice",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		distID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid slice ID '%s'\n", args[0])
			return
		}

		reason, _ := cmd.Flags().GetString("reason")
		comment, _ := cmd.Flags().GetString("comment")

		dist, _, err := db.CancelDistribution(uint(distID),
			models.Reason(strings.ToUpper(reason)), comment, time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("🚫 Cancelled slice #%d (%s)\n", dist.ID, dist.Reason)
	},
}

var restoreSliceCmd = &cobra.Command{
	Use:   "restore [slice-id]",
	Short: "Reopen a cancelled day slice",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		distID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid slice ID '%s'\n", args[0])
			return
		}

		dist, _, err := db.RestoreDistribution(uint(distID), time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("↩️  Restored slice #%d to PENDING\n", dist.ID)
	},
}

func init() {
	cancelSliceCmd.Flags().StringP("reason", "r", "OTHER", "Why the slice is cancelled")
	cancelSliceCmd.Flags().StringP("comment", "m", "", "Free-form comment")
}
