package service

import (
	"context"
	"testing"
	"time"

	"seniorsync/internal/alert"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReminder_RunOnce(t *testing.T) {
	reports, _ := setupReportService(nil)
	ctx := context.Background()

	for _, s := range []struct{ user, date string }{
		{"u1", "2024-04-30"},
		{"u2", "2024-05-02"},
		{"u3", "2024-05-01"},
		{"u4", "2024-04-01"},
	} {
		sub := submission(s.user)
		sub.Date = s.date
		_, err := reports.Submit(ctx, sub)
		require.NoError(t, err)
	}

	alerts := &fakeDispatcher{}
	r := NewReminder("0 19 * * *", time.UTC, reports, alerts, zap.NewNop())

	sent, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	require.Len(t, alerts.alerts, 2)
	users := []string{alerts.alerts[0].UserID, alerts.alerts[1].UserID}
	assert.ElementsMatch(t, []string{"u1", "u3"}, users)
	assert.Equal(t, alert.TypeMissedHealthCheck, alerts.alerts[0].AlertType)
	assert.Equal(t, "2024-05-02", alerts.alerts[0].HealthData["date"])
}

func TestReminder_RunOnceCountsOnlyDelivered(t *testing.T) {
	reports, _ := setupReportService(nil)
	sub := submission("u1")
	sub.Date = "2024-05-01"
	_, err := reports.Submit(context.Background(), sub)
	require.NoError(t, err)

	alerts := &fakeDispatcher{err: alert.ErrAllChannelsFailed}
	r := NewReminder("0 19 * * *", time.UTC, reports, alerts, zap.NewNop())

	sent, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, alerts.alerts, 1)
}

func TestReminder_StartStop(t *testing.T) {
	reports, _ := setupReportService(nil)

	bad := NewReminder("not a cron", time.UTC, reports, &fakeDispatcher{}, zap.NewNop())
	assert.Error(t, bad.Start())

	r := NewReminder("0 19 * * *", time.UTC, reports, &fakeDispatcher{}, zap.NewNop())
	require.NoError(t, r.Start())
	assert.Len(t, r.cron.Entries(), 1)
	r.Stop()
}
