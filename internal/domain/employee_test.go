package domain

import (
	"errors"
	"testing"
	"time"
)

func TestEmployeeValidate(t *testing.T) {
	t.Run("valid employee passes", func(t *testing.T) {
		emp := &Employee{FullName: "Sara", CardUID: "11AA"}
		if err := emp.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("missing name fails", func(t *testing.T) {
		emp := &Employee{CardUID: "11AA"}
		if err := emp.Validate(); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("missing card fails", func(t *testing.T) {
		emp := &Employee{FullName: "Sara"}
		if err := emp.Validate(); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestEmployeeNormalize(t *testing.T) {
	emp := &Employee{FullName: "  Sara  ", CardUID: " 11AA\r\n", Department: " RH "}
	emp.Normalize()

	if emp.FullName != "Sara" || emp.CardUID != "11AA" || emp.Department != "RH" {
		t.Errorf("unexpected normalized employee %+v", emp)
	}
}

func TestBadgeTaken(t *testing.T) {
	dir := testDirectory()

	if !BadgeTaken(dir, "A1B2", "") {
		t.Error("expected A1B2 to be taken")
	}
	if BadgeTaken(dir, "A1B2", "E1") {
		t.Error("expected A1B2 to be free for its own holder")
	}
	if BadgeTaken(dir, "FFFF", "") {
		t.Error("expected FFFF to be free")
	}
}

func TestBuildPresence(t *testing.T) {
	dir := []Employee{
		{ID: "E1", FullName: "Amina", Department: "IT", CardUID: "1"},
		{ID: "E2", FullName: "Youssef", Department: "Finance", CardUID: "2"},
		{ID: "E3", FullName: "Karim", Department: "IT", CardUID: "3"},
	}
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	records := []AttendanceRecord{
		{EmployeeID: "E1", Action: ActionCheckIn, Timestamp: day.Add(8 * time.Hour)},
		{EmployeeID: "E1", Action: ActionCheckOut, Timestamp: day.Add(17 * time.Hour)},
		{EmployeeID: "E3", Action: ActionCheckIn, Timestamp: day.Add(9 * time.Hour)},
		{EmployeeID: "E2", Action: ActionCheckIn, Timestamp: day.Add(-time.Hour)}, // previous day
	}

	p := BuildPresence("2024-06-03", dir, records)

	if p.Total != 3 {
		t.Errorf("expected total 3, got %d", p.Total)
	}
	if len(p.Present) != 2 {
		t.Fatalf("expected 2 present, got %d", len(p.Present))
	}
	if p.Present[0].Employee.ID != "E1" || p.Present[0].LastAction != ActionCheckOut {
		t.Errorf("unexpected first present entry %+v", p.Present[0])
	}
	if len(p.Absent) != 1 || p.Absent[0].ID != "E2" {
		t.Errorf("expected E2 absent, got %+v", p.Absent)
	}
	if p.ByDepartment["IT"] != 2 || p.ByDepartment["Finance"] != 0 {
		t.Errorf("unexpected department counts %v", p.ByDepartment)
	}
}

func TestSortByDateAdded(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	employees := []Employee{
		{ID: "E1", FullName: "Zineb", DateAdded: day},
		{ID: "E2", FullName: "Omar", DateAdded: day.AddDate(0, 0, 2)},
		{ID: "E3", FullName: "Amina", DateAdded: day},
		{ID: "E4", FullName: "Karim", DateAdded: day.AddDate(0, 0, 1)},
	}

	SortByDateAdded(employees)

	want := []string{"E2", "E4", "E3", "E1"}
	for i, id := range want {
		if employees[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, employees[i].ID)
		}
	}
}
