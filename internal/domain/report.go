package domain

import (
	"math"
	"sort"
	"time"
)

// EmployeeWork totals one employee's attendance over a range of days
type EmployeeWork struct {
	EmployeeID string        `json:"employee_id"`
	DaysWorked int           `json:"days_worked"`
	Worked     time.Duration `json:"-"`
	WorkHours  float64       `json:"work_hours"`
	Records    int           `json:"records"`
}

// DayWork sums the time between each check-in and the next check-out.
// records belong to one employee and one day. A check-in while one is
// already open is ignored, as is a check-out with nothing open, and a
// check-in left open at the end of the day counts for nothing.
func DayWork(records []AttendanceRecord) time.Duration {
	ordered := make([]AttendanceRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var total time.Duration
	var open *time.Time
	for i := range ordered {
		rec := &ordered[i]
		switch rec.Action {
		case ActionCheckIn:
			if open == nil {
				open = &rec.Timestamp
			}
		case ActionCheckOut:
			if open != nil {
				total += rec.Timestamp.Sub(*open)
				open = nil
			}
		}
	}
	return total
}

// WorkSummary groups records by employee and day, keeps the days inside
// [from, to], and totals worked time per employee. Days are paired
// independently, so a shift across midnight contributes nothing.
// The result is ordered by employee ID.
func WorkSummary(records []AttendanceRecord, from, to string) []EmployeeWork {
	grouped := make(map[string]map[string][]AttendanceRecord)
	for _, rec := range records {
		day := rec.Day()
		if !InDayRange(day, from, to) {
			continue
		}
		days, ok := grouped[rec.EmployeeID]
		if !ok {
			days = make(map[string][]AttendanceRecord)
			grouped[rec.EmployeeID] = days
		}
		days[day] = append(days[day], rec)
	}

	summary := make([]EmployeeWork, 0, len(grouped))
	for id, days := range grouped {
		work := EmployeeWork{EmployeeID: id, DaysWorked: len(days)}
		for _, recs := range days {
			work.Records += len(recs)
			work.Worked += DayWork(recs)
		}
		work.WorkHours = Hours(work.Worked)
		summary = append(summary, work)
	}
	sort.Slice(summary, func(i, j int) bool {
		return summary[i].EmployeeID < summary[j].EmployeeID
	})
	return summary
}

// Hours converts d to hours rounded to two decimals
func Hours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}
