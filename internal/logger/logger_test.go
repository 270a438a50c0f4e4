package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerDefaultsToInfoOnBadLevel(t *testing.T) {
	log := NewLogger("not-a-level")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())

	log = NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestAuditLoggerPredictionCreated(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogPredictionCreated("pred_001", "evt_42", "corners", 9.5, "over", 0.61, 1.64, "high")

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "audit", entry["component"])
	assert.Equal(t, "pred_001", entry["prediction_id"])
	assert.Equal(t, "corners", entry["stat_key"])
	assert.Equal(t, 9.5, entry["line"])
	assert.Equal(t, "over", entry["side"])
}

func TestAuditLoggerOutcomeChange(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	at := time.Date(2025, 3, 8, 17, 0, 0, 0, time.UTC)
	audit.LogOutcomeChange("pred_001", "pending", "won", 11, at)

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "pending", entry["old_outcome"])
	assert.Equal(t, "won", entry["new_outcome"])
	assert.Equal(t, float64(at.Unix()), entry["verified_at"])
}

func TestAuditLoggerQuotaRejection(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogQuotaRejection("verify", "hourly_limit", 30*time.Minute)

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "hourly_limit", entry["reason"])
	assert.Equal(t, "30m0s", entry["wait_time"])
}
