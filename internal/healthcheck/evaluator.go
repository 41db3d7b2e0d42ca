package healthcheck

import (
	"fmt"
	"strings"
)

// 风险提示文案
const (
	ConcernLowSleep       = "Very low sleep hours"
	ConcernExcessiveSleep = "Excessive sleep hours"
	ConcernPoorRating     = "Poor health rating"
	ConcernSeverePain     = "Severe pain reported"
	ConcernMedications    = "Medications not taken"
	ConcernMealsSkipped   = "Meals skipped"
	ConcernHealthConcerns = "Health concerns reported"
)

const (
	alertMessagePrefix  = "Health check revealed concerning conditions: "
	lowSleepThreshold   = 4
	excessiveSleepHours = 12
	poorRatingThreshold = 4
	severePainThreshold = 7
)

// Evaluate 按固定阈值评估日报
func Evaluate(r HealthReport) Evaluation {
	ev := Evaluation{
		Concerns: []string{},
		Details:  make(map[string]string, 6),
	}

	switch {
	case r.SleepHours < lowSleepThreshold:
		ev.Concerns = append(ev.Concerns, ConcernLowSleep)
		ev.Details["sleepHours"] = fmt.Sprintf("%d hours (too low)", r.SleepHours)
	case r.SleepHours > excessiveSleepHours:
		ev.Concerns = append(ev.Concerns, ConcernExcessiveSleep)
		ev.Details["sleepHours"] = fmt.Sprintf("%d hours (excessive)", r.SleepHours)
	default:
		ev.Details["sleepHours"] = fmt.Sprintf("%d hours", r.SleepHours)
	}

	if r.MoodRating < poorRatingThreshold {
		ev.Concerns = append(ev.Concerns, ConcernPoorRating)
	}
	ev.Details["moodRating"] = fmt.Sprintf("%d/10", r.MoodRating)

	if r.Pain == Yes {
		if r.PainSeverity >= severePainThreshold {
			ev.Concerns = append(ev.Concerns, ConcernSeverePain)
		}
		ev.Details["pain"] = fmt.Sprintf("Yes (severity: %d/10)", r.PainSeverity)
	} else {
		ev.Details["pain"] = No
	}

	if r.MedicationsTaken == No {
		ev.Concerns = append(ev.Concerns, ConcernMedications)
		ev.Details["medicationsTaken"] = No
	} else {
		ev.Details["medicationsTaken"] = Yes
	}

	if r.Meals == No {
		ev.Concerns = append(ev.Concerns, ConcernMealsSkipped)
		ev.Details["meals"] = No
	} else {
		ev.Details["meals"] = Yes
	}

	if r.HealthConcerns == Yes {
		ev.Concerns = append(ev.Concerns, ConcernHealthConcerns)
		ev.Details["healthConcerns"] = Yes
	} else {
		ev.Details["healthConcerns"] = No
	}

	return ev
}

// AlertMessage 告警正文
func (e *Evaluation) AlertMessage() string {
	return alertMessagePrefix + strings.Join(e.Concerns, ", ")
}
