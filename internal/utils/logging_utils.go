package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const serviceName = "odk-dashboard"

func GenerateTraceId() string {
	return uuid.New().String()
}

// LogEntry dispatches a message to the given entry at the given level.
func LogEntry(entry *log.Entry, level, message string) {
	switch level {
	case "debug":
		entry.Debug(message)
	case "info":
		entry.Info(message)
	case "warn":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	case "fatal":
		entry.Fatal(message)
	default:
		entry.Info(message)
	}
}

// LogMessageWithFields logs a message enriched with the request trace id.
func LogMessageWithFields(ctx *gin.Context, level, message string) {
	entry := log.WithFields(log.Fields{
		"traceId": ctx.GetString(TraceIdKey),
		"service": serviceName,
	})

	LogEntry(entry, level, message)
}
