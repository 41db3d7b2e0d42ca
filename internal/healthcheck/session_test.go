package healthcheck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Start(t *testing.T) {
	now := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	s := NewSession("s1", "u1", "sk-SK")
	s.Accumulator.Sleep = strp("9")

	require.NoError(t, s.Start(Slovak, now, "2024-05-01"))

	assert.Equal(t, StateActive, s.State)
	assert.True(t, s.Accumulator.IsEmpty())
	assert.Equal(t, "2024-05-02", s.Day)
	assert.Equal(t, "sk-SK", s.Locale)
	require.Len(t, s.Turns, 3)
	assert.Equal(t, RoleSystem, s.Turns[0].Role)
	assert.Contains(t, s.Turns[0].Content, "in Slovak")
	assert.Equal(t, Slovak.Greeting, s.Turns[1].Content)
	assert.Equal(t, Slovak.FirstQuestion, s.Turns[2].Content)
}

func TestSession_StartOncePerDay(t *testing.T) {
	now := time.Date(2024, 5, 2, 20, 0, 0, 0, time.UTC)
	s := NewSession("s1", "u1", "en-US")

	err := s.Start(English, now, "2024-05-02")
	assert.ErrorIs(t, err, ErrAlreadyCompletedToday)
	assert.Equal(t, StateIdle, s.State)
}

func TestSession_CompletesOnClosingPhrase(t *testing.T) {
	now := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	catalog := DefaultCatalog()
	scanner := NewScanner(catalog, 20)
	s := NewSession("s1", "u1", "en-US")
	require.NoError(t, s.Start(English, now, ""))

	s.Append(RoleUser, "About 7 hours")
	assert.False(t, s.ObserveReply(catalog, scanner, "Thanks! How do you feel today on a scale from 1 to 10?", now))
	assert.True(t, s.Accumulator.IsEmpty(), "scan only runs on completion")

	s.Append(RoleUser, "8/10")
	done := s.ObserveReply(catalog, scanner, "Thank you! I've recorded your health information for today.", now)
	require.True(t, done)
	assert.Equal(t, StateCompleted, s.State)
	require.NotNil(t, s.CompletedAt)
	require.NotNil(t, s.Accumulator.Sleep)
	assert.Equal(t, "7", *s.Accumulator.Sleep)
	require.NotNil(t, s.Accumulator.HealthRating)
	assert.Equal(t, "8", *s.Accumulator.HealthRating)

	// 已完成的会话不会再次完成
	assert.False(t, s.ObserveReply(catalog, scanner, "Thank you! I've recorded your health information for today.", now))
}

func TestSession_Finalize(t *testing.T) {
	s := NewSession("s1", "u1", "en-US")
	s.Accumulator = Accumulator{
		Sleep:        strp("2"),
		HealthRating: strp("8"),
		Medications:  strp(MedicationsTakenText),
	}

	report, ev := s.Finalize(NewCoercer(nil), "Short night, otherwise fine.")

	assert.Equal(t, 2, report.SleepHours)
	assert.Equal(t, []string{ConcernLowSleep}, ev.Concerns)
	assert.Equal(t, &report, s.Report)
	assert.Equal(t, "Short night, otherwise fine.", s.Summary)
}
