// Package recur clones a template task into a series of future occurrences,
// each carrying a fresh copy of the template's day slices.
package recur

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mgarnier/crewplan/internal/models"
)

// Frequency is the spacing between occurrences.
type Frequency string

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

// Fixed day offsets. Monthly and yearly use flat 30/365-day steps rather
// than calendar arithmetic so occurrence spacing stays uniform.
var frequencyDays = map[Frequency]int{
	Daily:   1,
	Weekly:  7,
	Monthly: 30,
	Yearly:  365,
}

// maxOccurrences caps a single expansion regardless of bounds.
const maxOccurrences = 100

// ParseFrequency normalizes user input into a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := frequencyDays[f]; !ok {
		return "", fmt.Errorf("unknown frequency %q (daily, weekly, monthly, yearly)", s)
	}
	return f, nil
}

// Options bound the expansion. Count and Until may both be set; the more
// restrictive one wins. Count alone carries no date bound; with neither,
// the series runs through December 31 of the current year.
type Options struct {
	Frequency   Frequency
	Count       int
	Until       *time.Time
	KeepCrews   bool
	KeepObjects bool
}

// compatibleFrequencies lists the frequencies whose offset can hold a task
// of the given duration, for the validation error message.
func compatibleFrequencies(durationDays int) []Frequency {
	var out []Frequency
	for f, days := range frequencyDays {
		if days >= durationDays {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return frequencyDays[out[i]] < frequencyDays[out[j]] })
	return out
}

// Expand creates the occurrences of the template task inside one
// transaction: either the whole series lands or none of it does. Each clone
// starts PLANNED with PENDING slices, shifted by the frequency offset, and
// points back to the template through its recurrence parent.
func Expand(gdb *gorm.DB, templateID uint, opts Options, now time.Time) ([]models.Task, error) {
	offsetDays, ok := frequencyDays[opts.Frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency %q", opts.Frequency)
	}
	if opts.Count < 0 {
		return nil, fmt.Errorf("occurrence count must be at least 1")
	}
	if opts.Count > maxOccurrences {
		return nil, fmt.Errorf("at most %d occurrences per expansion", maxOccurrences)
	}

	var template models.Task
	if err := gdb.Preload("Crews").Preload("Objects").Preload("Distributions").
		First(&template, templateID).Error; err != nil {
		return nil, fmt.Errorf("task #%d not found", templateID)
	}

	duration := template.DurationDays()
	if offsetDays < duration {
		compat := compatibleFrequencies(duration)
		names := make([]string, len(compat))
		for i, f := range compat {
			names[i] = string(f)
		}
		return nil, fmt.Errorf("a %d-day task cannot repeat %s: occurrences would overlap (compatible: %s)",
			duration, strings.ToLower(string(opts.Frequency)), strings.Join(names, ", "))
	}

	start := models.DateOnly(template.PlannedStart)

	// A bare count runs unbounded by date; the year-end default only steps
	// in when no bound was given at all.
	var until *time.Time
	if opts.Until != nil {
		u := models.DateOnly(*opts.Until)
		until = &u
	} else if opts.Count == 0 {
		u := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, start.Location())
		until = &u
	}

	count := maxOccurrences
	if opts.Count > 0 {
		count = opts.Count
	}

	var created []models.Task
	err := gdb.Transaction(func(tx *gorm.DB) error {
		for i := 1; i <= count; i++ {
			shift := offsetDays * i
			occStart := start.AddDate(0, 0, shift)
			if until != nil && occStart.After(*until) {
				break
			}

			clone := models.Task{
				Reference:          newReference("TSK"),
				TaskType:           template.TaskType,
				PlannedStart:       occStart,
				PlannedEnd:         models.DateOnly(template.PlannedEnd).AddDate(0, 0, shift),
				Priority:           template.Priority,
				Status:             models.TaskPlanned,
				EstimatedHours:     copyFloat(template.EstimatedHours),
				ManualEstimate:     template.ManualEstimate,
				Validation:         models.ValidationPending,
				Description:        template.Description,
				Comments:           template.Comments,
				RecurrenceParentID: &template.ID,
			}
			if opts.KeepCrews {
				clone.Crews = template.Crews
			}
			if opts.KeepObjects {
				for _, o := range template.Objects {
					clone.Objects = append(clone.Objects, models.TaskObject{
						ObjectRef:  o.ObjectRef,
						ObjectType: o.ObjectType,
						Kind:       o.Kind,
						AreaDeg2:   o.AreaDeg2,
						LengthDeg:  o.LengthDeg,
						Latitude:   o.Latitude,
					})
				}
			}
			for _, d := range template.Distributions {
				if d.Status == models.DistRescheduled || d.Status == models.DistCancelled {
					continue
				}
				clone.Distributions = append(clone.Distributions, models.Distribution{
					Reference:    newReference("DST"),
					Date:         models.DateOnly(d.Date).AddDate(0, 0, shift),
					PlannedHours: d.PlannedHours,
					StartTime:    d.StartTime,
					EndTime:      d.EndTime,
					Status:       models.DistPending,
				})
			}

			if err := tx.Create(&clone).Error; err != nil {
				return err
			}
			created = append(created, clone)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func newReference(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}
