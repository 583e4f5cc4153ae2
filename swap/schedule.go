package swap

import (
	"time"

	"github.com/meenmo/swapcurve/calendar"
	"github.com/meenmo/swapcurve/utils"
)

// buildSchedule rolls forward from effective in steps of freqMonths, each end date
// computed from the effective date to avoid drift, ending with a short stub at maturity
// when tenorMonths is not a multiple of freqMonths.
func buildSchedule(effective time.Time, tenorMonths, freqMonths int, cal calendar.CalendarID) []Period {
	periods := make([]Period, 0, (tenorMonths+freqMonths-1)/freqMonths)
	start := effective
	for months := freqMonths; ; months += freqMonths {
		if months > tenorMonths {
			months = tenorMonths
		}
		end := calendar.Adjust(cal, utils.AddMonth(effective, months))
		periods = append(periods, Period{
			StartDate: start,
			EndDate:   end,
			Accrual:   utils.YearFraction(start, end, utils.Act365F),
		})
		if months == tenorMonths {
			return periods
		}
		start = end
	}
}
