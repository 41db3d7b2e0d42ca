package repository

import (
	"context"

	"seniorsync/internal/domain"
)

// HealthReportsRepository 每日健康日报 Repository 接口
// 唯一性约束：user_id + report_date
type HealthReportsRepository interface {
	// SaveReport 保存或更新报告（同一用户同一天只保留一条），回填 ReportID/CreatedAt/UpdatedAt
	SaveReport(ctx context.Context, report *domain.StoredReport) error

	// GetReport 根据用户和日期获取报告，不存在时返回 nil, nil
	GetReport(ctx context.Context, userID, date string) (*domain.StoredReport, error)

	// ListReports 按日期倒序查询；userID 为空表示所有用户，from/to 为空表示不限
	ListReports(ctx context.Context, userID, from, to string) ([]*domain.StoredReport, error)

	// ListUsersWithoutReport since（含）之后有过报告、但 day 当天没有报告的用户
	ListUsersWithoutReport(ctx context.Context, since, day string) ([]string, error)
}
