package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"seniorsync/internal/domain"

	"github.com/google/uuid"
)

// PostgresHealthReportsRepository 每日健康日报 Repository 实现
type PostgresHealthReportsRepository struct {
	db *sql.DB
}

func NewPostgresHealthReportsRepository(db *sql.DB) *PostgresHealthReportsRepository {
	return &PostgresHealthReportsRepository{db: db}
}

// 确保实现了接口
var _ HealthReportsRepository = (*PostgresHealthReportsRepository)(nil)

const reportColumns = `
			report_id::text,
			user_id,
			report_date::text,
			sleep_hours,
			mood_rating,
			pain,
			pain_severity,
			medications_taken,
			meals,
			health_concerns,
			summary,
			concerns::text,
			created_at,
			updated_at`

func (r *PostgresHealthReportsRepository) SaveReport(ctx context.Context, report *domain.StoredReport) error {
	if report == nil || report.UserID == "" || report.ReportDate == "" {
		return fmt.Errorf("user_id and report_date are required")
	}
	if report.ReportID == "" {
		report.ReportID = uuid.NewString()
	}
	concerns := report.Concerns
	if concerns == nil {
		concerns = []string{}
	}
	concernsJSON, err := json.Marshal(concerns)
	if err != nil {
		return fmt.Errorf("failed to marshal concerns: %w", err)
	}

	// 同一天重复提交时覆盖内容，保留原 report_id
	query := `
		INSERT INTO health_reports (
			report_id, user_id, report_date,
			sleep_hours, mood_rating, pain, pain_severity,
			medications_taken, meals, health_concerns,
			summary, concerns
		) VALUES ($1::uuid, $2, $3::date, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb)
		ON CONFLICT (user_id, report_date)
		DO UPDATE SET sleep_hours = EXCLUDED.sleep_hours,
		              mood_rating = EXCLUDED.mood_rating,
		              pain = EXCLUDED.pain,
		              pain_severity = EXCLUDED.pain_severity,
		              medications_taken = EXCLUDED.medications_taken,
		              meals = EXCLUDED.meals,
		              health_concerns = EXCLUDED.health_concerns,
		              summary = EXCLUDED.summary,
		              concerns = EXCLUDED.concerns,
		              updated_at = NOW()
		RETURNING report_id::text, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		report.ReportID,
		report.UserID,
		report.ReportDate,
		report.SleepHours,
		report.MoodRating,
		report.Pain,
		report.PainSeverity,
		report.MedicationsTaken,
		report.Meals,
		report.HealthConcerns,
		report.Summary,
		string(concernsJSON),
	).Scan(&report.ReportID, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save health report: %w", err)
	}
	return nil
}

func (r *PostgresHealthReportsRepository) GetReport(ctx context.Context, userID, date string) (*domain.StoredReport, error) {
	if userID == "" || date == "" {
		return nil, fmt.Errorf("user_id and date are required")
	}

	query := `SELECT` + reportColumns + `
		FROM health_reports
		WHERE user_id = $1
		  AND report_date = $2::date
	`
	report, err := scanReport(r.db.QueryRowContext(ctx, query, userID, date))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // 报告不存在
		}
		return nil, fmt.Errorf("failed to get health report: %w", err)
	}
	return report, nil
}

func (r *PostgresHealthReportsRepository) ListReports(ctx context.Context, userID, from, to string) ([]*domain.StoredReport, error) {
	var (
		where []string
		args  []any
	)
	if userID != "" {
		args = append(args, userID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if from != "" {
		args = append(args, from)
		where = append(where, fmt.Sprintf("report_date >= $%d::date", len(args)))
	}
	if to != "" {
		args = append(args, to)
		where = append(where, fmt.Sprintf("report_date <= $%d::date", len(args)))
	}

	query := `SELECT` + reportColumns + `
		FROM health_reports`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY report_date DESC, user_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list health reports: %w", err)
	}
	defer rows.Close()

	reports := []*domain.StoredReport{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan health report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate health reports: %w", err)
	}
	return reports, nil
}

func (r *PostgresHealthReportsRepository) ListUsersWithoutReport(ctx context.Context, since, day string) ([]string, error) {
	query := `
		SELECT DISTINCT user_id
		FROM health_reports
		WHERE report_date >= $1::date
		  AND report_date < $2::date
		  AND user_id NOT IN (
			SELECT user_id FROM health_reports WHERE report_date = $2::date
		  )
		ORDER BY user_id
	`
	rows, err := r.db.QueryContext(ctx, query, since, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list users without report: %w", err)
	}
	defer rows.Close()

	users := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan user_id: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.StoredReport, error) {
	var (
		report   domain.StoredReport
		concerns string
	)
	err := row.Scan(
		&report.ReportID,
		&report.UserID,
		&report.ReportDate,
		&report.SleepHours,
		&report.MoodRating,
		&report.Pain,
		&report.PainSeverity,
		&report.MedicationsTaken,
		&report.Meals,
		&report.HealthConcerns,
		&report.Summary,
		&concerns,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	report.Concerns = []string{}
	if concerns != "" {
		if err := json.Unmarshal([]byte(concerns), &report.Concerns); err != nil {
			return nil, fmt.Errorf("failed to parse concerns: %w", err)
		}
	}
	return &report, nil
}
