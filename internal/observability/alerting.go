package observability

import (
	"errors"
	"fmt"
	"time"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	Count       int           `json:"count"`
	Threshold   int           `json:"threshold"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// Alert conditions.
const (
	ConditionRedTargetDates     = "red_target_dates"
	ConditionMissingTargetDates = "missing_target_dates"
	ConditionDataQuality        = "data_quality"
)

// AlertEngine turns a health report into threshold alerts.
type AlertEngine interface {
	Evaluate(report *models.HealthReport) ([]Alert, error)
}

type alertEngine struct {
	thresholds models.AlertConfig
}

// NewAlertEngine creates an AlertEngine. An alert fires when its count is
// strictly greater than the threshold, so a zero threshold alerts on any hit.
func NewAlertEngine(thresholds models.AlertConfig) AlertEngine {
	return &alertEngine{thresholds: thresholds}
}

// Evaluate checks the report against every threshold. Alerts come back in
// severity order: high, medium, low.
func (ae *alertEngine) Evaluate(report *models.HealthReport) ([]Alert, error) {
	if report == nil {
		return nil, errors.New("evaluating alerts: nil health report")
	}

	var alerts []Alert
	if a, ok := ae.checkRed(report); ok {
		alerts = append(alerts, a)
	}
	if a, ok := ae.checkMissingTargetDates(report); ok {
		alerts = append(alerts, a)
	}
	if a, ok := ae.checkDataQuality(report); ok {
		alerts = append(alerts, a)
	}
	return alerts, nil
}

// checkRed counts overdue items in the focus state only.
func (ae *alertEngine) checkRed(r *models.HealthReport) (Alert, bool) {
	count := r.Focus().Count(models.Red)
	if count <= ae.thresholds.MaxRed {
		return Alert{}, false
	}
	return Alert{
		ID:          "red-" + r.FocusState,
		Condition:   ConditionRedTargetDates,
		Severity:    SeverityHigh,
		Message:     fmt.Sprintf("%d %s items are past their target date (max %d)", count, r.FocusState, ae.thresholds.MaxRed),
		Count:       count,
		Threshold:   ae.thresholds.MaxRed,
		TriggeredAt: r.GeneratedAt,
	}, true
}

func (ae *alertEngine) checkMissingTargetDates(r *models.HealthReport) (Alert, bool) {
	count := 0
	for _, s := range r.States {
		count += s.Count(models.Missing)
	}
	if count <= ae.thresholds.MaxMissingTargetDate {
		return Alert{}, false
	}
	return Alert{
		ID:          "missing-target-date",
		Condition:   ConditionMissingTargetDates,
		Severity:    SeverityMedium,
		Message:     fmt.Sprintf("%d items have no target date (max %d)", count, ae.thresholds.MaxMissingTargetDate),
		Count:       count,
		Threshold:   ae.thresholds.MaxMissingTargetDate,
		TriggeredAt: r.GeneratedAt,
	}, true
}

func (ae *alertEngine) checkDataQuality(r *models.HealthReport) (Alert, bool) {
	count := len(r.MissingStatus) + len(r.AmberMissingInfo)
	if count <= ae.thresholds.MaxDataQuality {
		return Alert{}, false
	}
	return Alert{
		ID:        "data-quality",
		Condition: ConditionDataQuality,
		Severity:  SeverityLow,
		Message: fmt.Sprintf("%d progress data issues: %d without status, %d '%s' without info (max %d)",
			count, len(r.MissingStatus), len(r.AmberMissingInfo), r.AmberValue, ae.thresholds.MaxDataQuality),
		Count:       count,
		Threshold:   ae.thresholds.MaxDataQuality,
		TriggeredAt: r.GeneratedAt,
	}, true
}
