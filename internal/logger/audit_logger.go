// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for prediction
// lifecycle events and external provider calls.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogPredictionCreated logs a newly generated prediction.
func (al *AuditLogger) LogPredictionCreated(predictionID, eventID, statKey string, line float64, side string, probability, fairOdds float64, confidence string) {
	al.WithFields(logrus.Fields{
		"prediction_id": predictionID,
		"event_id":      eventID,
		"stat_key":      statKey,
		"line":          line,
		"side":          side,
		"probability":   probability,
		"fair_odds":     fairOdds,
		"confidence":    confidence,
	}).Info("Prediction created")
}

// LogValueBetFound logs a surfaced value bet.
func (al *AuditLogger) LogValueBetFound(predictionID, bookmaker string, odds, ev, edge float64, rating string) {
	al.WithFields(logrus.Fields{
		"prediction_id": predictionID,
		"bookmaker":     bookmaker,
		"odds":          odds,
		"ev_percent":    ev,
		"edge_percent":  edge,
		"rating":        rating,
	}).Info("Value bet found")
}

// LogOutcomeChange logs a prediction outcome transition.
func (al *AuditLogger) LogOutcomeChange(predictionID string, oldOutcome, newOutcome string, actualValue float64, verifiedAt time.Time) {
	al.WithFields(logrus.Fields{
		"prediction_id": predictionID,
		"old_outcome":   oldOutcome,
		"new_outcome":   newOutcome,
		"actual_value":  actualValue,
		"verified_at":   verifiedAt.Unix(),
	}).Info("Prediction outcome changed")
}

// LogProviderCall logs an outbound call to the result provider.
func (al *AuditLogger) LogProviderCall(label, eventID string, remainingDaily, remainingHourly int) {
	al.WithFields(logrus.Fields{
		"label":            label,
		"event_id":         eventID,
		"remaining_daily":  remainingDaily,
		"remaining_hourly": remainingHourly,
	}).Debug("Provider call recorded")
}

// LogQuotaRejection logs a call blocked by the quota controller.
func (al *AuditLogger) LogQuotaRejection(label, reason string, waitTime time.Duration) {
	al.WithFields(logrus.Fields{
		"label":     label,
		"reason":    reason,
		"wait_time": waitTime.String(),
	}).Warn("Provider call rejected by quota controller")
}
