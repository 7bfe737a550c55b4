package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"badgeclock/internal/attendance"
	"badgeclock/internal/domain"
	"badgeclock/internal/repository"
	"badgeclock/internal/repository/sqlite"
	"badgeclock/internal/scanner"
)

// ============================================================================
// Test Helpers
// ============================================================================

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(s string) *testClock {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &testClock{t: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// failingAppends wraps a repository whose attendance appends always fail
type failingAppends struct {
	repository.Repository
}

func (f failingAppends) AppendAttendance(ctx context.Context, rec *domain.AttendanceRecord) error {
	return errors.New("store unavailable")
}

type testEnv struct {
	repo       repository.Repository
	bus        *EventBus
	attendance *AttendanceService
	directory  *DirectoryService
	clock      *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return newTestEnvWith(t, repo)
}

func newTestEnvWith(t *testing.T, repo repository.Repository) *testEnv {
	t.Helper()
	clock := newTestClock("2024-06-03T08:00:00Z")
	env := newTestEnvClock(t, repo, clock.Now)
	env.clock = clock
	return env
}

func newTestEnvClock(t *testing.T, repo repository.Repository, now func() time.Time) *testEnv {
	t.Helper()
	bus := NewEventBus()
	snaps := NewSnapshots(repo, time.Minute, time.Minute)
	engine := attendance.NewEngine(repo, attendance.NewRecentScans(attendance.DefaultRecentScans),
		attendance.WithClock(now), attendance.WithLocation(time.UTC))

	directory := NewDirectoryService(repo, snaps, bus)
	directory.now = now

	return &testEnv{
		repo:       repo,
		bus:        bus,
		attendance: NewAttendanceService(repo, engine, snaps, bus),
		directory:  directory,
	}
}

// stepClock returns start, then start+step, start+2*step, ...
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}

// failingReads wraps a repository whose directory or attendance listing fails
type failingReads struct {
	repository.Repository
	employees  bool
	attendance bool
}

func (f failingReads) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	if f.employees {
		return nil, errors.New("directory unavailable")
	}
	return f.Repository.ListEmployees(ctx)
}

func (f failingReads) ListAttendance(ctx context.Context, filter domain.AttendanceFilter) ([]domain.AttendanceRecord, error) {
	if f.attendance {
		return nil, errors.New("attendance unavailable")
	}
	return f.Repository.ListAttendance(ctx, filter)
}

func newMemoryRepo(t *testing.T) repository.Repository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func assertAlternating(t *testing.T, records []domain.AttendanceRecord) {
	t.Helper()
	want := domain.ActionCheckIn
	for i, rec := range records {
		if rec.Action != want {
			t.Fatalf("record %d: expected %s, got %s (%+v)", i, want, rec.Action, records)
		}
		want = want.Complement()
	}
}

func (e *testEnv) addEmployee(t *testing.T, name, dept, card string) *domain.Employee {
	t.Helper()
	emp := &domain.Employee{FullName: name, Department: dept, CardUID: card}
	if err := e.directory.CreateEmployee(context.Background(), emp); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return emp
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

// ============================================================================
// Scans
// ============================================================================

func TestRecordScanAlternates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addEmployee(t, "Amina Benali", "IT", "A1B2")

	want := []domain.Action{domain.ActionCheckIn, domain.ActionCheckOut, domain.ActionCheckIn, domain.ActionCheckOut}
	for i, action := range want {
		res, err := env.attendance.RecordScan(ctx, "A1B2")
		assertNoError(t, err)
		if res.Record.Action != action {
			t.Fatalf("scan %d: expected %s, got %s", i, action, res.Record.Action)
		}
		env.clock.Advance(time.Minute)
	}

	status := env.attendance.Status()
	if status.Message != "employee Amina Benali checked out" {
		t.Errorf("unexpected status %q", status.Message)
	}
	if status.Outcome != domain.OutcomeRecorded {
		t.Errorf("expected outcome recorded, got %s", status.Outcome)
	}

	records, err := env.repo.ListAttendance(ctx, domain.AttendanceFilter{Day: "2024-06-03"})
	assertNoError(t, err)
	if len(records) != 4 {
		t.Errorf("expected 4 stored records, got %d", len(records))
	}
}

func TestRecordScanUnknownBadge(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(t, "Amina Benali", "IT", "A1B2")

	_, err := env.attendance.RecordScan(context.Background(), "FFFF")
	assertErrorIs(t, err, domain.ErrUnknownBadge)

	status := env.attendance.Status()
	if status.Message != "no employee found for this card" {
		t.Errorf("unexpected status %q", status.Message)
	}
	recent := env.attendance.RecentScans()
	if len(recent) != 1 || recent[0].Outcome != domain.OutcomeUnknownBadge {
		t.Errorf("expected one unknown_badge entry, got %+v", recent)
	}
}

func TestRecordScanAmbiguousIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	// the directory service refuses duplicates, the store does not
	for _, id := range []string{"E1", "E2"} {
		assertNoError(t, env.repo.CreateEmployee(ctx, &domain.Employee{ID: id, FullName: id, CardUID: "DUPE"}))
	}

	_, err := env.attendance.RecordScan(ctx, "DUPE")
	assertErrorIs(t, err, domain.ErrAmbiguousIdentity)

	if msg := env.attendance.Status().Message; msg != "several employees share this card" {
		t.Errorf("unexpected status %q", msg)
	}
	records, err := env.repo.ListAttendance(ctx, domain.AttendanceFilter{})
	assertNoError(t, err)
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestRecordScanEmptyBadge(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.attendance.RecordScan(context.Background(), " \n")
	assertErrorIs(t, err, domain.ErrEmptyBadge)
}

func TestRecordScanPersistenceFailure(t *testing.T) {
	repo, err := sqlite.New(":memory:")
	assertNoError(t, err)
	t.Cleanup(func() { repo.Close() })
	assertNoError(t, repo.CreateEmployee(context.Background(), &domain.Employee{ID: "E1", FullName: "Amina Benali", CardUID: "A1B2"}))

	env := newTestEnvWith(t, failingAppends{repo})

	_, err = env.attendance.RecordScan(context.Background(), "A1B2")
	assertErrorIs(t, err, domain.ErrPersistence)

	status := env.attendance.Status()
	if status.Message != "failed to save attendance for Amina Benali" {
		t.Errorf("unexpected status %q", status.Message)
	}
	if status.Outcome != domain.OutcomePersistenceFailure {
		t.Errorf("expected persistence_failure, got %s", status.Outcome)
	}
}

func TestRecordScanMidnightReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addEmployee(t, "Amina Benali", "IT", "A1B2")
	env.clock.Advance(15*time.Hour + 59*time.Minute) // 23:59

	first, err := env.attendance.RecordScan(ctx, "A1B2")
	assertNoError(t, err)
	env.clock.Advance(2 * time.Minute)
	second, err := env.attendance.RecordScan(ctx, "A1B2")
	assertNoError(t, err)

	if first.Record.Action != domain.ActionCheckIn || second.Record.Action != domain.ActionCheckIn {
		t.Errorf("expected check-in on both sides of midnight, got %s then %s",
			first.Record.Action, second.Record.Action)
	}
}

func TestRecordScanAcrossMidnightUsesOneDay(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)
	assertNoError(t, repo.CreateEmployee(ctx, &domain.Employee{ID: "E1", FullName: "Amina Benali", CardUID: "A1B2"}))
	// a check-in already stored on the next day
	nextDay := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	assertNoError(t, repo.AppendAttendance(ctx, &domain.AttendanceRecord{
		ID: "seed", EmployeeID: "E1", Action: domain.ActionCheckIn, Timestamp: nextDay,
	}))

	// every clock reading moves one millisecond closer to midnight
	env := newTestEnvClock(t, repo, stepClock(nextDay.Add(-2*time.Millisecond), time.Millisecond))

	res, err := env.attendance.RecordScan(ctx, "A1B2")
	assertNoError(t, err)

	records, err := repo.ListAttendance(ctx, domain.AttendanceFilter{Day: res.Record.Day(), EmployeeID: "E1"})
	assertNoError(t, err)
	assertAlternating(t, records)
}

func TestRecordScanLoadFailuresReachRecentLog(t *testing.T) {
	tests := []struct {
		name     string
		repo     func(repository.Repository) repository.Repository
		wantName string
	}{
		{
			name:     "directory unavailable",
			repo:     func(r repository.Repository) repository.Repository { return failingReads{Repository: r, employees: true} },
			wantName: "",
		},
		{
			name:     "today unavailable",
			repo:     func(r repository.Repository) repository.Repository { return failingReads{Repository: r, attendance: true} },
			wantName: "Amina Benali",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := newMemoryRepo(t)
			assertNoError(t, repo.CreateEmployee(ctx, &domain.Employee{ID: "E1", FullName: "Amina Benali", CardUID: "A1B2"}))
			env := newTestEnvWith(t, tt.repo(repo))

			_, err := env.attendance.RecordScan(ctx, "A1B2")
			assertErrorIs(t, err, domain.ErrPersistence)

			recent := env.attendance.RecentScans()
			if len(recent) != 1 {
				t.Fatalf("expected one recent entry, got %+v", recent)
			}
			if recent[0].Outcome != domain.OutcomePersistenceFailure || recent[0].BadgeID != "A1B2" {
				t.Errorf("unexpected recent entry %+v", recent[0])
			}
			if recent[0].EmployeeName != tt.wantName {
				t.Errorf("employee name = %q, want %q", recent[0].EmployeeName, tt.wantName)
			}
			if env.attendance.Status().Outcome != domain.OutcomePersistenceFailure {
				t.Errorf("unexpected status %+v", env.attendance.Status())
			}
		})
	}
}

func TestConcurrentScansStayAlternating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addEmployee(t, "Amina Benali", "IT", "A1B2")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.attendance.RecordScan(ctx, "A1B2"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	records, err := env.repo.ListAttendance(ctx, domain.AttendanceFilter{Day: "2024-06-03"})
	assertNoError(t, err)
	if len(records) != 20 {
		t.Fatalf("expected 20 records, got %d", len(records))
	}
	want := domain.ActionCheckIn
	for i, rec := range records {
		if rec.Action != want {
			t.Fatalf("record %d: expected %s, got %s", i, want, rec.Action)
		}
		want = want.Complement()
	}
}

func TestHandleStateUpdatesStatus(t *testing.T) {
	env := newTestEnv(t)
	events := make(chan Event, 4)
	env.bus.Subscribe(events)

	env.attendance.HandleState(scanner.StateConnected, nil)
	status := env.attendance.Status()
	if status.Connection != scanner.StateConnected || status.Message != "connected" {
		t.Errorf("unexpected status %+v", status)
	}

	env.attendance.HandleState(scanner.StateError, errors.New("reset by peer"))
	if env.attendance.Status().Message != "error" {
		t.Errorf("expected error status, got %q", env.attendance.Status().Message)
	}

	for i := 0; i < 2; i++ {
		select {
		case ev := <-events:
			if ev.Type != EventStatusChanged {
				t.Errorf("expected %s, got %s", EventStatusChanged, ev.Type)
			}
		default:
			t.Fatal("expected a status event")
		}
	}
}

func TestHandleScanSwallowsErrors(t *testing.T) {
	env := newTestEnv(t)
	env.attendance.HandleScan(context.Background(), scanner.Scan{BadgeID: "NOPE", ReceivedAt: time.Now()})

	if env.attendance.Status().Outcome != domain.OutcomeUnknownBadge {
		t.Errorf("expected unknown badge outcome, got %+v", env.attendance.Status())
	}
}

// ============================================================================
// Manual entries, history, presence
// ============================================================================

func TestRecordManualFeedsInference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.addEmployee(t, "Amina Benali", "IT", "A1B2")

	rec, err := env.attendance.RecordManual(ctx, ManualEntry{
		EmployeeID: emp.ID,
		Action:     domain.ActionCheckIn,
		Timestamp:  env.clock.Now().Add(-time.Hour),
	})
	assertNoError(t, err)
	if !rec.IsManual {
		t.Error("expected manual flag")
	}

	res, err := env.attendance.RecordScan(ctx, "A1B2")
	assertNoError(t, err)
	if res.Record.Action != domain.ActionCheckOut {
		t.Errorf("expected check-out after manual check-in, got %s", res.Record.Action)
	}
}

func TestRecordManualValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.addEmployee(t, "Amina Benali", "IT", "A1B2")

	_, err := env.attendance.RecordManual(ctx, ManualEntry{EmployeeID: emp.ID, Action: "lunch"})
	assertErrorIs(t, err, domain.ErrInvalidAction)

	_, err = env.attendance.RecordManual(ctx, ManualEntry{EmployeeID: "missing", Action: domain.ActionCheckIn})
	assertErrorIs(t, err, domain.ErrNotFound)

	_, err = env.attendance.RecordManual(ctx, ManualEntry{Action: domain.ActionCheckIn})
	assertErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListAttendance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addEmployee(t, "Amina Benali", "IT", "A1B2")
	env.addEmployee(t, "Youssef Idrissi", "Finance", "C3D4")

	for _, badge := range []string{"A1B2", "C3D4", "A1B2"} {
		_, err := env.attendance.RecordScan(ctx, badge)
		assertNoError(t, err)
		env.clock.Advance(time.Minute)
	}

	all, err := env.attendance.ListAttendance(ctx, AttendanceQuery{Day: "2024-06-03"})
	assertNoError(t, err)
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].EmployeeName != "Amina Benali" || all[0].Action != domain.ActionCheckOut {
		t.Errorf("expected newest entry first, got %+v", all[0])
	}

	found, err := env.attendance.ListAttendance(ctx, AttendanceQuery{Search: "youss"})
	assertNoError(t, err)
	if len(found) != 1 || found[0].Department != "Finance" {
		t.Errorf("expected one Finance entry, got %+v", found)
	}

	none, err := env.attendance.ListAttendance(ctx, AttendanceQuery{Day: "2024-06-04"})
	assertNoError(t, err)
	if len(none) != 0 {
		t.Errorf("expected no entries on another day, got %d", len(none))
	}
}

func TestPresence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addEmployee(t, "Amina Benali", "IT", "A1B2")
	env.addEmployee(t, "Youssef Idrissi", "Finance", "C3D4")

	_, err := env.attendance.RecordScan(ctx, "A1B2")
	assertNoError(t, err)

	p, err := env.attendance.Presence(ctx, "")
	assertNoError(t, err)
	if p.Day != "2024-06-03" || len(p.Present) != 1 || len(p.Absent) != 1 {
		t.Fatalf("unexpected presence %+v", p)
	}
	if p.ByDepartment["IT"] != 1 {
		t.Errorf("expected one present in IT, got %v", p.ByDepartment)
	}

	past, err := env.attendance.Presence(ctx, "2024-06-02")
	assertNoError(t, err)
	if len(past.Present) != 0 || len(past.Absent) != 2 {
		t.Errorf("expected everyone absent the day before, got %+v", past)
	}
}

func TestReports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	amina := env.addEmployee(t, "Amina Benali", "IT", "A1B2")
	youssef := env.addEmployee(t, "Youssef Idrissi", "Finance", "C3D4")
	env.addEmployee(t, "Karim Alaoui", "HR", "E5F6")

	entries := []struct {
		emp    *domain.Employee
		action domain.Action
		ts     time.Time
	}{
		{amina, domain.ActionCheckIn, time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)},
		{amina, domain.ActionCheckOut, time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)},
		{amina, domain.ActionCheckIn, time.Date(2024, 6, 3, 13, 0, 0, 0, time.UTC)},
		{amina, domain.ActionCheckOut, time.Date(2024, 6, 3, 17, 30, 0, 0, time.UTC)},
		{amina, domain.ActionCheckIn, time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)},
		{youssef, domain.ActionCheckIn, time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)},
		{youssef, domain.ActionCheckOut, time.Date(2024, 6, 4, 11, 0, 0, 0, time.UTC)},
		{youssef, domain.ActionCheckIn, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)},
		{youssef, domain.ActionCheckOut, time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)},
	}
	for _, e := range entries {
		_, err := env.attendance.RecordManual(ctx, ManualEntry{EmployeeID: e.emp.ID, Action: e.action, Timestamp: e.ts})
		assertNoError(t, err)
	}

	report, err := env.attendance.Reports(ctx, "2024-06-03", "2024-06-09", "")
	assertNoError(t, err)
	if len(report.Employees) != 3 {
		t.Fatalf("expected every employee listed, got %+v", report.Employees)
	}
	byName := make(map[string]EmployeeReport)
	for _, line := range report.Employees {
		byName[line.Employee.FullName] = line
	}
	if got := byName["Amina Benali"]; got.DaysWorked != 2 || got.WorkHours != 8.5 || got.Records != 5 {
		t.Errorf("unexpected Amina line %+v", got)
	}
	if got := byName["Youssef Idrissi"]; got.DaysWorked != 1 || got.WorkHours != 2 || got.Records != 2 {
		t.Errorf("unexpected Youssef line %+v", got)
	}
	if got := byName["Karim Alaoui"]; got.DaysWorked != 0 || got.WorkHours != 0 {
		t.Errorf("expected Karim with zero totals, got %+v", got)
	}
	if report.TotalHours != 10.5 {
		t.Errorf("expected 10.5 total hours, got %v", report.TotalHours)
	}

	single, err := env.attendance.Reports(ctx, "", "", youssef.ID)
	assertNoError(t, err)
	if len(single.Employees) != 1 || single.Employees[0].DaysWorked != 2 || single.TotalHours != 3 {
		t.Errorf("unexpected single-employee report %+v", single)
	}

	_, err = env.attendance.Reports(ctx, "", "", "missing")
	assertErrorIs(t, err, domain.ErrNotFound)
	_, err = env.attendance.Reports(ctx, "2024-06-09", "2024-06-03", "")
	assertErrorIs(t, err, domain.ErrInvalidInput)
	_, err = env.attendance.Reports(ctx, "03/06/2024", "", "")
	assertErrorIs(t, err, domain.ErrInvalidInput)
}

// ============================================================================
// Enrollment
// ============================================================================

func TestEnrollmentCapture(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addEmployee(t, "Amina Benali", "IT", "A1B2")

	if env.attendance.Enrollment().Active {
		t.Fatal("expected enrollment to start disarmed")
	}
	env.attendance.StartEnrollment()

	res, err := env.attendance.RecordScan(ctx, "A1B2")
	assertNoError(t, err)
	if res.Enrollment == nil || !res.Enrollment.Active || res.Enrollment.Message != msgCardTaken {
		t.Fatalf("expected taken card to keep capture armed, got %+v", res.Enrollment)
	}

	res, err = env.attendance.RecordScan(ctx, "NEW1")
	assertNoError(t, err)
	if res.Enrollment.Active || res.Enrollment.CardUID != "NEW1" {
		t.Errorf("expected NEW1 captured, got %+v", res.Enrollment)
	}
	if env.attendance.Status().Message != "card scanned: NEW1" {
		t.Errorf("unexpected status %q", env.attendance.Status().Message)
	}

	records, err := env.repo.ListAttendance(ctx, domain.AttendanceFilter{})
	assertNoError(t, err)
	if len(records) != 0 {
		t.Errorf("expected captured scans not to be recorded, got %d", len(records))
	}

	// capture is over, scans are attendance again
	_, err = env.attendance.RecordScan(ctx, "A1B2")
	assertNoError(t, err)

	if got := env.attendance.CancelEnrollment(); got.Active || got.CardUID != "" {
		t.Errorf("expected cleared enrollment, got %+v", got)
	}
}

// ============================================================================
// Directory
// ============================================================================

func TestDirectoryBadgeUniqueness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	amina := env.addEmployee(t, "Amina Benali", "IT", "A1B2")
	youssef := env.addEmployee(t, "Youssef Idrissi", "Finance", "C3D4")

	err := env.directory.CreateEmployee(ctx, &domain.Employee{FullName: "Copy", CardUID: " A1B2 "})
	assertErrorIs(t, err, domain.ErrDuplicateBadge)

	err = env.directory.UpdateEmployee(ctx, youssef.ID, &domain.Employee{FullName: "Youssef Idrissi", CardUID: "A1B2"})
	assertErrorIs(t, err, domain.ErrDuplicateBadge)

	err = env.directory.UpdateEmployee(ctx, amina.ID, &domain.Employee{FullName: "Amina B.", Department: "IT", CardUID: "A1B2"})
	assertNoError(t, err)

	got, err := env.directory.GetEmployee(ctx, amina.ID)
	assertNoError(t, err)
	if got.FullName != "Amina B." || !got.DateAdded.Equal(amina.DateAdded) {
		t.Errorf("unexpected employee after update %+v", got)
	}
}

func TestQueryEmployeesRecent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, name := range []string{"Amina", "Youssef", "Karim", "Salma"} {
		env.addEmployee(t, name, "IT", "card-"+name)
		env.clock.Advance(time.Hour)
	}

	recent, err := env.directory.QueryEmployees(ctx, EmployeeQuery{Sort: SortByRecent, Limit: 2})
	assertNoError(t, err)
	if len(recent) != 2 || recent[0].FullName != "Salma" || recent[1].FullName != "Karim" {
		t.Errorf("unexpected recent employees %+v", recent)
	}

	all, err := env.directory.QueryEmployees(ctx, EmployeeQuery{})
	assertNoError(t, err)
	if len(all) != 4 || all[0].FullName != "Amina" {
		t.Errorf("expected all employees by name, got %+v", all)
	}

	_, err = env.directory.QueryEmployees(ctx, EmployeeQuery{Sort: "salary"})
	assertErrorIs(t, err, domain.ErrInvalidInput)
	_, err = env.directory.QueryEmployees(ctx, EmployeeQuery{Limit: -1})
	assertErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDirectoryValidationAndNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.directory.CreateEmployee(ctx, &domain.Employee{FullName: "No Card"})
	assertErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.directory.GetEmployee(ctx, "missing")
	assertErrorIs(t, err, domain.ErrNotFound)

	err = env.directory.UpdateEmployee(ctx, "missing", &domain.Employee{FullName: "X", CardUID: "1"})
	assertErrorIs(t, err, domain.ErrNotFound)

	err = env.directory.DeleteEmployee(ctx, "missing")
	assertErrorIs(t, err, domain.ErrNotFound)
}

func TestDirectoryChangesReachScans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.addEmployee(t, "Amina Benali", "IT", "A1B2")

	_, err := env.attendance.RecordScan(ctx, "A1B2")
	assertNoError(t, err)

	// a new badge is visible at once despite the directory TTL
	assertNoError(t, env.directory.UpdateEmployee(ctx, emp.ID, &domain.Employee{FullName: "Amina Benali", CardUID: "Z9"}))
	res, err := env.attendance.RecordScan(ctx, "Z9")
	assertNoError(t, err)
	if res.Record.Action != domain.ActionCheckOut {
		t.Errorf("expected check-out on the new badge, got %s", res.Record.Action)
	}
}

func TestDeleteEmployeeCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	emp := env.addEmployee(t, "Amina Benali", "IT", "A1B2")

	_, err := env.attendance.RecordScan(ctx, "A1B2")
	assertNoError(t, err)
	assertNoError(t, env.directory.DeleteEmployee(ctx, emp.ID))

	records, err := env.repo.ListAttendance(ctx, domain.AttendanceFilter{})
	assertNoError(t, err)
	if len(records) != 0 {
		t.Errorf("expected attendance removed with the employee, got %d", len(records))
	}

	_, err = env.attendance.RecordScan(ctx, "A1B2")
	assertErrorIs(t, err, domain.ErrUnknownBadge)
}

func TestImportRoster(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	existing := env.addEmployee(t, "Amina Benali", "IT", "A1B2")
	env.addEmployee(t, "Youssef Idrissi", "Finance", "C3D4")

	result, err := env.directory.ImportRoster(ctx, []domain.Employee{
		{FullName: "Amina Benali", Department: "Support", CardUID: "A1B2"},    // update by badge
		{FullName: "Karim Alaoui", Department: "IT", CardUID: "E5F6"},         // create
		{FullName: "", CardUID: "0000"},                                       // invalid
		{ID: existing.ID, FullName: "Amina Benali", CardUID: "C3D4"},          // badge held by Youssef
		{FullName: "Youssef Idrissi", Department: "Finance", CardUID: "C3D4"}, // unchanged
	})
	assertNoError(t, err)

	if result.Created != 1 || result.Updated != 1 || result.Skipped != 2 {
		t.Errorf("unexpected result %+v", result)
	}

	got, err := env.directory.GetEmployee(ctx, existing.ID)
	assertNoError(t, err)
	if got.Department != "Support" {
		t.Errorf("expected department Support, got %s", got.Department)
	}

	all, err := env.directory.ListEmployees(ctx)
	assertNoError(t, err)
	if len(all) != 3 {
		t.Errorf("expected 3 employees, got %d", len(all))
	}
}

// ============================================================================
// Events
// ============================================================================

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	fast := make(chan Event, 1)
	slow := make(chan Event)
	bus.Subscribe(fast)
	bus.Subscribe(slow)

	// slow has no reader and must not block the publisher
	bus.Publish(Event{Type: EventEmployeeCreated})

	select {
	case ev := <-fast:
		if ev.Type != EventEmployeeCreated {
			t.Errorf("unexpected event %s", ev.Type)
		}
	default:
		t.Fatal("expected event on fast subscriber")
	}

	bus.Unsubscribe(fast)
	bus.Publish(Event{Type: EventEmployeeDeleted})
	select {
	case ev := <-fast:
		t.Errorf("unexpected event after unsubscribe: %s", ev.Type)
	default:
	}
}
