package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"seniorsync/internal/domain"

	"github.com/google/uuid"
)

// MemoryHealthReportsRepository DB 未启用时使用的内存实现（进程重启后丢失）
type MemoryHealthReportsRepository struct {
	mu      sync.RWMutex
	reports map[string]map[string]*domain.StoredReport // userID -> date -> report
	now     func() time.Time
}

func NewMemoryHealthReportsRepository() *MemoryHealthReportsRepository {
	return &MemoryHealthReportsRepository{
		reports: map[string]map[string]*domain.StoredReport{},
		now:     time.Now,
	}
}

var _ HealthReportsRepository = (*MemoryHealthReportsRepository)(nil)

func (r *MemoryHealthReportsRepository) SaveReport(_ context.Context, report *domain.StoredReport) error {
	if report == nil || report.UserID == "" || report.ReportDate == "" {
		return fmt.Errorf("user_id and report_date are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	byDate := r.reports[report.UserID]
	if byDate == nil {
		byDate = map[string]*domain.StoredReport{}
		r.reports[report.UserID] = byDate
	}

	now := r.now()
	if existing, ok := byDate[report.ReportDate]; ok {
		report.ReportID = existing.ReportID
		report.CreatedAt = existing.CreatedAt
	} else {
		if report.ReportID == "" {
			report.ReportID = uuid.NewString()
		}
		report.CreatedAt = now
	}
	report.UpdatedAt = now

	cp := *report
	cp.Concerns = append([]string{}, report.Concerns...)
	byDate[report.ReportDate] = &cp
	return nil
}

func (r *MemoryHealthReportsRepository) GetReport(_ context.Context, userID, date string) (*domain.StoredReport, error) {
	if userID == "" || date == "" {
		return nil, fmt.Errorf("user_id and date are required")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[userID][date]
	if !ok {
		return nil, nil
	}
	cp := *report
	return &cp, nil
}

func (r *MemoryHealthReportsRepository) ListReports(_ context.Context, userID, from, to string) ([]*domain.StoredReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.StoredReport{}
	for uid, byDate := range r.reports {
		if userID != "" && uid != userID {
			continue
		}
		for date, report := range byDate {
			// YYYY-MM-DD 可直接按字符串比较
			if (from != "" && date < from) || (to != "" && date > to) {
				continue
			}
			cp := *report
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReportDate != out[j].ReportDate {
			return out[i].ReportDate > out[j].ReportDate
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *MemoryHealthReportsRepository) ListUsersWithoutReport(_ context.Context, since, day string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []string{}
	for uid, byDate := range r.reports {
		if _, done := byDate[day]; done {
			continue
		}
		for date := range byDate {
			if date >= since && date < day {
				users = append(users, uid)
				break
			}
		}
	}
	sort.Strings(users)
	return users, nil
}
