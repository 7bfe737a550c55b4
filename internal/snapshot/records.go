package snapshot

import (
	"context"
	"sync"
	"time"

	"badgeclock/internal/domain"
)

// DayLoader fetches all attendance records of one calendar day in insertion order
type DayLoader func(ctx context.Context, day string) ([]domain.AttendanceRecord, error)

// DayRecords caches the attendance records of a single calendar day.
// Asking for another day drops the cached one.
type DayRecords struct {
	mu    sync.Mutex
	day   string
	cache *Cache[[]domain.AttendanceRecord]
	load  DayLoader
	ttl   time.Duration
	now   func() time.Time
}

// NewDayRecords creates a day cache reloaded through load once older than ttl
func NewDayRecords(load DayLoader, ttl time.Duration) *DayRecords {
	return &DayRecords{
		load: load,
		ttl:  ttl,
		now:  time.Now,
	}
}

// SetClock replaces the wall clock used for expiry
func (d *DayRecords) SetClock(now func() time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = now
	if d.cache != nil {
		d.cache.SetClock(now)
	}
}

// Get returns the records of day
func (d *DayRecords) Get(ctx context.Context, day string) ([]domain.AttendanceRecord, error) {
	records, err := d.forDay(day).Get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AttendanceRecord, len(records))
	copy(out, records)
	return out, nil
}

// Append writes rec through to the cache when it belongs to the cached day
func (d *DayRecords) Append(rec domain.AttendanceRecord) {
	d.mu.Lock()
	cache := d.cache
	day := d.day
	d.mu.Unlock()

	if cache == nil || rec.Day() != day {
		return
	}
	cache.Update(func(records []domain.AttendanceRecord) []domain.AttendanceRecord {
		return append(records, rec)
	})
}

// Invalidate forces a reload on the next Get
func (d *DayRecords) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cache != nil {
		d.cache.Invalidate()
	}
}

// Day returns the calendar day currently cached
func (d *DayRecords) Day() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.day
}

func (d *DayRecords) forDay(day string) *Cache[[]domain.AttendanceRecord] {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cache == nil || d.day != day {
		d.day = day
		d.cache = New(func(ctx context.Context) ([]domain.AttendanceRecord, error) {
			return d.load(ctx, day)
		}, d.ttl)
		d.cache.SetClock(d.now)
	}
	return d.cache
}
