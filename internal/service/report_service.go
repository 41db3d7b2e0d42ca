package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seniorsync/internal/domain"
	"seniorsync/internal/healthcheck"
	"seniorsync/internal/repository"

	"go.uber.org/zap"
)

// ReportForwarder 外部护理系统转发（backend.ElderCare）
type ReportForwarder interface {
	Enabled() bool
	Forward(ctx context.Context, payload any) (map[string]any, error)
}

// ReportService 日报保存、查询和转发
type ReportService struct {
	repo      repository.HealthReportsRepository
	forwarder ReportForwarder
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewReportService forwarder 可为 nil（不转发）
func NewReportService(repo repository.HealthReportsRepository, forwarder ReportForwarder, location *time.Location, logger *zap.Logger) *ReportService {
	if location == nil {
		location = time.UTC
	}
	return &ReportService{
		repo:      repo,
		forwarder: forwarder,
		location:  location,
		now:       time.Now,
		logger:    logger,
	}
}

// Today 服务时区的当天日期
func (s *ReportService) Today() string {
	return s.now().In(s.location).Format(domain.DateFormat)
}

// Submit 校验并保存日报；配置了 ElderCare 时同时转发
// 校验失败返回 ErrInvalidReport；转发失败不影响保存结果，只记录在 Message 中
func (s *ReportService) Submit(ctx context.Context, sub domain.ReportSubmission) (domain.ReportResult, error) {
	if err := sub.Validate(); err != nil {
		return domain.ReportResult{Success: false, Message: err.Error()}, err
	}

	date := sub.Date
	if date == "" {
		date = s.Today()
	}
	concerns := sub.Concerns
	if concerns == nil {
		ev := healthcheck.Evaluate(sub.HealthReport)
		concerns = ev.Concerns
	}

	stored := &domain.StoredReport{
		UserID:       string(sub.UserID),
		ReportDate:   date,
		HealthReport: sub.HealthReport,
		Summary:      sub.Summary,
		Concerns:     concerns,
	}
	if err := s.repo.SaveReport(ctx, stored); err != nil {
		s.logger.Error("Failed to save health report", zap.String("user_id", stored.UserID), zap.Error(err))
		return domain.ReportResult{Success: false, Message: "Database error"}, fmt.Errorf("save report: %w", err)
	}

	result := domain.ReportResult{
		Success:  true,
		Message:  "Health report successfully saved to database",
		ReportID: stored.ReportID,
	}

	if s.forwarder != nil && s.forwarder.Enabled() {
		resp, err := s.forwarder.Forward(ctx, sub)
		if err != nil {
			s.logger.Warn("ElderCare forward failed", zap.String("user_id", stored.UserID), zap.Error(err))
			result.Message += "; forward failed: " + err.Error()
		} else {
			result.BackendResponse = resp
		}
	}

	s.logger.Info("Health report saved",
		zap.String("user_id", stored.UserID),
		zap.String("report_date", stored.ReportDate),
		zap.Strings("concerns", stored.Concerns),
	)
	return result, nil
}

// ErrInvalidDateRange 查询日期格式错误
var ErrInvalidDateRange = errors.New("from/to must be YYYY-MM-DD")

// List 按用户和日期范围查询（均可为空）
func (s *ReportService) List(ctx context.Context, userID, from, to string) ([]*domain.StoredReport, error) {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(domain.DateFormat, d); err != nil {
			return nil, ErrInvalidDateRange
		}
	}
	return s.repo.ListReports(ctx, userID, from, to)
}

// Get 查询单日日报，不存在返回 nil
func (s *ReportService) Get(ctx context.Context, userID, date string) (*domain.StoredReport, error) {
	return s.repo.GetReport(ctx, userID, date)
}

// MissingToday 最近 lookbackDays 天有过日报、但当天没有日报的用户
func (s *ReportService) MissingToday(ctx context.Context, lookbackDays int) ([]string, string, error) {
	today := s.now().In(s.location)
	day := today.Format(domain.DateFormat)
	since := today.AddDate(0, 0, -lookbackDays).Format(domain.DateFormat)
	users, err := s.repo.ListUsersWithoutReport(ctx, since, day)
	if err != nil {
		return nil, day, fmt.Errorf("list users without report: %w", err)
	}
	return users, day, nil
}
