package domain

import "sort"

// EmployeeStatus pairs an employee with the last action of the day
type EmployeeStatus struct {
	Employee   Employee `json:"employee"`
	LastAction Action   `json:"last_action"`
	LastSeen   string   `json:"last_seen"`
}

// Presence summarizes who showed up on a calendar day.
// An employee with any record that day counts as present.
type Presence struct {
	Day          string           `json:"day"`
	Present      []EmployeeStatus `json:"present"`
	Absent       []Employee       `json:"absent"`
	ByDepartment map[string]int   `json:"by_department"`
	Total        int              `json:"total"`
}

// BuildPresence computes the presence summary for day
func BuildPresence(day string, employees []Employee, records []AttendanceRecord) *Presence {
	p := &Presence{
		Day:          day,
		Present:      []EmployeeStatus{},
		Absent:       []Employee{},
		ByDepartment: make(map[string]int),
		Total:        len(employees),
	}

	for _, emp := range employees {
		latest := LatestRecord(emp.ID, day, records)
		if latest == nil {
			p.Absent = append(p.Absent, emp)
			continue
		}
		p.Present = append(p.Present, EmployeeStatus{
			Employee:   emp,
			LastAction: latest.Action,
			LastSeen:   FormatTimestamp(latest.Timestamp),
		})
		if emp.Department != "" {
			p.ByDepartment[emp.Department]++
		}
	}

	sort.Slice(p.Present, func(i, j int) bool {
		return p.Present[i].Employee.FullName < p.Present[j].Employee.FullName
	})
	sort.Slice(p.Absent, func(i, j int) bool {
		return p.Absent[i].FullName < p.Absent[j].FullName
	})
	return p
}
