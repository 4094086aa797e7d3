package apexlog

import (
	"github.com/apex/log"

	keep "github.com/goliatone/go-keep"
)

// OpLogger forwards registry operation events to apex/log. Failed operations
// log at warn, successful ones at debug.
type OpLogger struct {
	Logger log.Interface
}

// NewOpLogger returns an OpLogger writing to the apex root logger.
func NewOpLogger() OpLogger {
	return OpLogger{Logger: log.Log}
}

// LogOperation implements keep.Logger.
func (l OpLogger) LogOperation(event keep.OpEvent) {
	logger := l.Logger
	if logger == nil {
		logger = log.Log
	}
	entry := logger.WithFields(log.Fields{
		"op":       string(event.Op),
		"class":    event.Class,
		"branch":   event.Branch,
		"instance": event.Instance,
		"duration": event.Duration.String(),
	})
	if event.Err != nil {
		entry.WithError(event.Err).Warn("cache operation failed")
		return
	}
	entry.Debug("cache operation")
}

// EvalLogger forwards query evaluations to apex/log.
type EvalLogger struct {
	Logger log.Interface
}

// LogEvaluation implements keep.EvaluatorLogger.
func (l EvalLogger) LogEvaluation(event keep.EvaluatorLogEvent) {
	logger := l.Logger
	if logger == nil {
		logger = log.Log
	}
	entry := logger.WithFields(log.Fields{
		"engine":   event.Engine,
		"expr":     event.Expr,
		"class":    event.Class,
		"branch":   event.Branch,
		"matches":  event.Matches,
		"duration": event.Duration.String(),
	})
	if event.Err != nil {
		entry.WithError(event.Err).Warn("query failed")
		return
	}
	entry.Debug("query evaluated")
}
