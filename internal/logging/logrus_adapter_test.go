package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{"debug level with text format", "debug", "text", logrus.DebugLevel},
		{"info level with json format", "info", "json", logrus.InfoLevel},
		{"warn level with text format", "warn", "text", logrus.WarnLevel},
		{"error level with json format", "error", "json", logrus.ErrorLevel},
		{"invalid level defaults to info", "loud", "text", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.Level())

			if tt.format == "json" {
				assert.IsType(t, &logrus.JSONFormatter{}, adapter.logger.Formatter)
			} else {
				assert.IsType(t, &logrus.TextFormatter{}, adapter.logger.Formatter)
			}
		})
	}
}

func TestLogrusAdapter_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("debug", "json", &buf)

	logger.WithField(FieldRunID, "abc-123").
		Warn("Amount coerced to zero", F(FieldRow, 21), F(FieldValue, "n/a"))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Amount coerced to zero", line["msg"])
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "abc-123", line[FieldRunID])
	assert.Equal(t, float64(21), line[FieldRow])
	assert.Equal(t, "n/a", line[FieldValue])
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("warn", "text", &buf)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Error("visible error")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible error")
}

func TestLogrusAdapter_ChainedCalls(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("info", "text", &buf)

	logger.
		WithFields(F(FieldInputFile, "movements.xls"), F(FieldStage, "read")).
		WithError(errors.New("sheet missing")).
		Error("Ingestion failed")

	output := buf.String()
	assert.Contains(t, output, "Ingestion failed")
	assert.Contains(t, output, "movements.xls")
	assert.Contains(t, output, "stage=read")
	assert.Contains(t, output, "sheet missing")
}

func TestConvertFields(t *testing.T) {
	fields := convertFields([]Field{F("a", "x"), F("b", 42), F("a", "y")})
	assert.Len(t, fields, 2)
	assert.Equal(t, "y", fields["a"], "last value wins on duplicate keys")
	assert.Equal(t, 42, fields["b"])

	assert.Empty(t, convertFields(nil))
}

func TestLogrusAdapter_ImplementsInterface(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}
