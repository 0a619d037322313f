package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgarnier/crewplan/internal/calendar"
	"github.com/mgarnier/crewplan/internal/db"
	"github.com/mgarnier/crewplan/internal/models"
	"github.com/mgarnier/crewplan/internal/parser"
)

var crewCmd = &cobra.Command{
	Use:   "crew",
	Short: "Manage crews, members, schedules and absences",
}

var crewAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a crew",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		crew := models.Crew{Name: args[0]}
		if err := db.DB.Where("name = ?", args[0]).FirstOrCreate(&crew).Error; err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Crew #%d: %s\n", crew.ID, crew.Name)
	},
}

var crewListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List crews with availability for a date",
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		on, _ := cmd.Flags().GetString("on")
		date, err := parser.ParseDate(on, time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		var crews []models.Crew
		if err := db.DB.Preload("Members").Order("name").Find(&crews).Error; err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if len(crews) == 0 {
			fmt.Println("No crews defined.")
			return
		}

		fmt.Printf("Availability on %s:\n", date.Format("2006-01-02"))
		for _, c := range crews {
			available, err := calendar.CrewAvailable(db.DB, c.ID, date)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			hours, err := calendar.WorkableHours(db.DB, c.ID, date)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			mark := "✅"
			if !available {
				mark = "❌"
			}
			fmt.Printf("  %s %-15s %d member(s), %.1fh workable\n", mark, c.Name, len(c.Members), hours)
		}
	},
}

var crewMemberCmd = &cobra.Command{
	Use:   "member [crew-name] [member-name]",
	Short: "Add a member to a crew",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		crew, err := getCrewByName(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		member := models.CrewMember{CrewID: crew.ID, Name: args[1], Active: true}
		if err := db.DB.Where("crew_id = ? AND name = ?", crew.ID, args[1]).
			FirstOrCreate(&member).Error; err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Member %s added to crew %s\n", member.Name, crew.Name)
	},
}

var crewScheduleCmd = &cobra.Command{
	Use:   "schedule [crew-name] [weekday] [hours]",
	Short: "Set a crew's workable hours for a weekday",
	Long: `Set a crew's workable hours for a weekday, overriding the default
week (8h Mon-Fri, 4h Sat, closed Sun). Weekday is the English name or 0-6
with 0 = Sunday. Zero hours closes the day.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		crew, err := getCrewByName(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		weekday, err := parseWeekday(args[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		hours, err := strconv.ParseFloat(args[2], 64)
		if err != nil || hours < 0 || hours > 24 {
			fmt.Printf("Error: hours must be between 0 and 24, got '%s'\n", args[2])
			return
		}

		day := models.CrewScheduleDay{CrewID: crew.ID, Weekday: int(weekday), Hours: hours}
		err = db.DB.Where("crew_id = ? AND weekday = ?", crew.ID, int(weekday)).
			Assign(map[string]any{"hours": hours}).
			FirstOrCreate(&day).Error
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Crew %s works %.1fh on %s\n", crew.Name, hours, weekday)
	},
}

var crewAbsenceCmd = &cobra.Command{
	Use:   "absence [crew-name] [member-name] [date or date..date]",
	Short: "Record an approved absence for a crew member",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		initDB()
		crew, err := getCrewByName(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		var member models.CrewMember
		if err := db.DB.Where("crew_id = ? AND name = ?", crew.ID, args[1]).First(&member).Error; err != nil {
			fmt.Printf("Error: no member '%s' in crew %s\n", args[1], crew.Name)
			return
		}
		from, to, err := parser.ParseDateRange(args[2], time.Now())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		kind, _ := cmd.Flags().GetString("kind")
		absence := models.Absence{
			MemberID: member.ID,
			From:     from,
			To:       to,
			Approved: true,
			Kind:     kind,
		}
		if err := db.DB.Create(&absence).Error; err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Absence recorded: %s away %s..%s\n", member.Name,
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	},
}

func getCrewByName(name string) (*models.Crew, error) {
	var crew models.Crew
	if err := db.DB.Where("name = ?", name).First(&crew).Error; err != nil {
		return nil, fmt.Errorf("crew '%s' not found", name)
	}
	return &crew, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("weekday number must be 0-6 (0 = Sunday)")
		}
		return time.Weekday(n), nil
	}
	names := map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday,
		"friday": time.Friday, "saturday": time.Saturday,
	}
	if d, ok := names[strings.ToLower(s)]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unrecognized weekday %q", s)
}

func init() {
	crewListCmd.Flags().StringP("on", "o", "today", "Date to check availability for")
	crewAbsenceCmd.Flags().StringP("kind", "k", "leave", "Absence kind (leave, sick, training)")

	crewCmd.AddCommand(crewAddCmd)
	crewCmd.AddCommand(crewListCmd)
	crewCmd.AddCommand(crewMemberCmd)
	crewCmd.AddCommand(crewScheduleCmd)
	crewCmd.AddCommand(crewAbsenceCmd)
}
