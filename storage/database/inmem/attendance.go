package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/shule/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]attendance.Record, 0)
	for studentID, byDate := range repo.db.table {
		if filter.StudentID != "" && studentID != filter.StudentID {
			continue
		}
		for _, r := range byDate {
			if filter.Match(*r) {
				records = append(records, *r)
			}
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].StudentID < records[j].StudentID
	})
	return records, nil
}

func (repo *attendanceRepository) UpsertRecords(_ context.Context, records []attendance.Record) ([]attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	saved := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		byDate, ok := repo.db.table[r.StudentID]
		if !ok {
			byDate = make(map[string]*attendance.Record)
			repo.db.table[r.StudentID] = byDate
		}
		if prev, ok := byDate[r.Date]; ok {
			r.ID = prev.ID
		} else {
			r.ID = newID()
		}
		rec := r
		byDate[r.Date] = &rec
		saved = append(saved, r)
	}
	return saved, nil
}
