package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/models"
	"github.com/mgarnier/crewplan/internal/parser"
)

var moveCmd = &cobra.Command{
	Use:   "move [slice-id] [new-date]",
	Short: "Move one day slice to another date",
	Long: `Move one day slice to another date. The original slice is kept as
RESCHEDULED and a replacement carries the work on the new date. A slice can
be moved at most 5 times along its chain.

Reasons: WEATHER, ABSENCE, EQUIPMENT, CLIENT, URGENT, OTHER.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		distID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid slice ID '%s'\n", args[0])
			return
		}
		newDate, err := parser.ParseDate(args[1], time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		reason, _ := cmd.Flags().GetString("reason")
		comment, _ := cmd.Flags().GetString("comment")

		replacement, _, err := db.RescheduleDistribution(uint(distID),
			newDate, models.Reason(strings.ToUpper(reason)), comment, time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("📅 Moved slice #%d to %s (new slice #%d)\n",
			distID, replacement.Date.Format("2006-01-02"), replacement.ID)
	},
}

func init() {
	moveCmd.Flags().StringP("reason", "r", "OTHER", "Why the slice moves")
	moveCmd.Flags().StringP("comment", "m", "", "Free-form comment")
}
