package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"seniorsync/internal/domain"
	"seniorsync/internal/service"

	"go.uber.org/zap"
)

// ReportService 日报保存和查询（service.ReportService）
type ReportService interface {
	Submit(ctx context.Context, sub domain.ReportSubmission) (domain.ReportResult, error)
	List(ctx context.Context, userID, from, to string) ([]*domain.StoredReport, error)
}

type ReportHandler struct {
	reports ReportService
	logger  *zap.Logger
}

func NewReportHandler(reports ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// SendReport POST /eldercare/send-report -> {success, message}
func (h *ReportHandler) SendReport(w http.ResponseWriter, r *http.Request) {
	var sub domain.ReportSubmission
	if err := readBodyJSON(r, maxBodyBytes, &sub); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body: "+err.Error())
		return
	}

	res, err := h.reports.Submit(r.Context(), sub)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidReport) {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("SendReport failed", zap.String("user_id", string(sub.UserID)), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type reportList struct {
	Items []*domain.StoredReport `json:"items"`
	Total int                    `json:"total"`
}

func (h *ReportHandler) list(w http.ResponseWriter, r *http.Request) ([]*domain.StoredReport, bool) {
	q := r.URL.Query()
	reports, err := h.reports.List(r.Context(), strings.TrimSpace(q.Get("userId")), q.Get("from"), q.Get("to"))
	if err != nil {
		if !errors.Is(err, service.ErrInvalidDateRange) {
			h.logger.Error("ListReports failed", zap.Error(err))
		}
		writeFail(w, err.Error())
		return nil, false
	}
	if reports == nil {
		reports = []*domain.StoredReport{}
	}
	return reports, true
}

// ListReports GET /eldercare/reports?userId=&from=&to=
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, ok := h.list(w, r)
	if !ok {
		return
	}
	writeOk(w, reportList{Items: reports, Total: len(reports)})
}

// ExportReports GET /eldercare/reports/export?userId=&from=&to= -> xlsx
func (h *ReportHandler) ExportReports(w http.ResponseWriter, r *http.Request) {
	reports, ok := h.list(w, r)
	if !ok {
		return
	}
	data, err := GenerateReportExport(reports)
	if err != nil {
		h.logger.Error("GenerateReportExport failed", zap.Error(err))
		writeFail(w, "failed to generate export")
		return
	}

	name := "health-reports.xlsx"
	if u := r.URL.Query().Get("userId"); u != "" {
		name = fmt.Sprintf("health-reports-%s.xlsx", sanitizeFilename(u))
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
