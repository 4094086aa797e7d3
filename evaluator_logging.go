package keep

import "time"

// EvaluatorLogEvent describes one query evaluation for logging.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Class    string
	Branch   string
	Matches  int
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records query evaluations.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// WithEvaluatorLogger attaches a query evaluation logger to the registry.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *registryConfig) {
		if logger == nil {
			cfg.queryLogger = noopEvaluatorLogger{}
			return
		}
		cfg.queryLogger = logger
	}
}

func (r *Registry) evaluatorLogger() EvaluatorLogger {
	if r.cfg.queryLogger != nil {
		return r.cfg.queryLogger
	}
	return noopEvaluatorLogger{}
}
