package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"seniorsync/internal/healthcheck"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transcript = `[
  {"role":"assistant","content":"How many hours did you sleep last night?"},
  {"role":"user","content":"I slept 6 hours"},
  {"role":"assistant","content":"How do you feel today on a scale from 1 to 10?"},
  {"role":"user","content":"3/10"},
  {"role":"assistant","content":"Did you experience any pain today?"},
  {"role":"user","content":"No"},
  {"role":"assistant","content":"Have you taken all your medications today?"},
  {"role":"user","content":"no"},
  {"role":"assistant","content":"Did you eat regular meals today?"},
  {"role":"user","content":"yes"},
  {"role":"assistant","content":"Thank you! I've recorded your health information for today."}
]`

func writeTranscript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestReadTranscript_Formats(t *testing.T) {
	turns, err := readTranscript(writeTranscript(t, transcript))
	require.NoError(t, err)
	assert.Len(t, turns, 11)

	turns, err = readTranscript(writeTranscript(t, `{"messages":[{"role":"user","content":"hi"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []healthcheck.ChatTurn{{Role: healthcheck.RoleUser, Content: "hi"}}, turns)

	_, err = readTranscript(writeTranscript(t, `not json`))
	assert.ErrorContains(t, err, "parse transcript")
}

func TestScanCmd(t *testing.T) {
	out, err := run(t, "scan", "--file", writeTranscript(t, transcript))
	require.NoError(t, err)

	var res pipelineResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Accumulator.Sleep)
	assert.Equal(t, "6", *res.Accumulator.Sleep)
	assert.Equal(t, 6, res.Report.SleepHours)
	assert.Equal(t, 3, res.Report.MoodRating)
	assert.Equal(t, []string{healthcheck.ConcernPoorRating, healthcheck.ConcernMedications}, res.Evaluation.Concerns)
	assert.Equal(t, "6 hours", res.Evaluation.Details["sleepHours"])
}

func TestScanCmd_SummaryAndWindow(t *testing.T) {
	out, err := run(t, "scan", "-f", writeTranscript(t, transcript), "--window", "4", "--summary", "User is worried about dizziness")
	require.NoError(t, err)

	var res pipelineResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	// 只看最后 4 条：睡眠和评分不在窗口内
	assert.Nil(t, res.Accumulator.Sleep)
	assert.Nil(t, res.Accumulator.HealthRating)
	assert.Equal(t, healthcheck.Yes, res.Report.HealthConcerns)
}

func TestScanCmd_RequiresFile(t *testing.T) {
	_, err := run(t, "scan")
	assert.Error(t, err)
}

func TestSubmitCmd(t *testing.T) {
	var paths []string
	var report map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/telegram/alert":
			_, _ = w.Write([]byte(`{"status":"sent"}`))
		case "/api/eldercare/send-report":
			_ = json.Unmarshal(body, &report)
			_, _ = w.Write([]byte(`{"success":true,"message":"Health report successfully saved to database","reportId":"r1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	out, err := run(t, "submit", "--file", writeTranscript(t, transcript), "--user", "42", "--backend", srv.URL+"/api")
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/telegram/alert", "/api/eldercare/send-report"}, paths)
	assert.Equal(t, "42", report["userId"])
	assert.Equal(t, "No", report["medicationsTaken"])
	assert.Contains(t, out, "report saved: r1")
}

func TestSubmitCmd_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"invalid health report: userId is required"}`))
	}))
	defer srv.Close()

	_, err := run(t, "submit", "--file", writeTranscript(t, `[]`), "--user", "42", "--backend", srv.URL)
	assert.ErrorContains(t, err, "userId is required")
}
