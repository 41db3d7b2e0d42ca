package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seniorsync/internal/alert"
	"seniorsync/internal/domain"
	"seniorsync/internal/healthcheck"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/chat", r.URL.Path)
		var req domain.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Messages, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Good morning!"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api", 5*time.Second, zap.NewNop())
	reply, err := c.Chat(context.Background(), domain.ChatRequest{
		Messages: []healthcheck.ChatTurn{{Role: healthcheck.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Good morning!", reply)
}

func TestClient_ChatErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"messages are required"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := c.Chat(context.Background(), domain.ChatRequest{})
	assert.ErrorContains(t, err, "HTTP 400: messages are required")
}

func TestClient_SendReport(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eldercare/send-report", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Health report successfully saved to database","reportId":"r1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	res, err := c.SendReport(context.Background(), domain.ReportSubmission{
		UserID:       "u1",
		HealthReport: healthcheck.HealthReport{SleepHours: 6, MoodRating: 3, Pain: "No", MedicationsTaken: "No", Meals: "Yes", HealthConcerns: "No"},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "r1", res.ReportID)
	assert.Equal(t, "u1", got["userId"])
	assert.Equal(t, float64(6), got["sleepHours"])
}

func TestClient_SendAlert(t *testing.T) {
	var got alert.Alert
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	err := c.SendAlert(context.Background(), alert.Alert{AlertType: alert.TypeEmergency, Message: "help"})
	require.NoError(t, err)
	assert.Equal(t, "emergency", got.AlertType)
}

func TestElderCare_Forward(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":17}`))
	}))
	defer srv.Close()

	ec := NewElderCare(srv.URL+"/api/report/daily", 5*time.Second)
	require.True(t, ec.Enabled())
	out, err := ec.Forward(context.Background(), map[string]any{"userId": "u1"})
	require.NoError(t, err)
	assert.Equal(t, float64(17), out["id"])
}

func TestElderCare_ForwardErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewElderCare(srv.URL, 5*time.Second).Forward(context.Background(), map[string]any{})
	assert.ErrorContains(t, err, "eldercare backend error: 500")

	_, err = NewElderCare("", time.Second).Forward(context.Background(), nil)
	assert.ErrorIs(t, err, ErrElderCareDisabled)
}
