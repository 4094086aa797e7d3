package keep

import "time"

// Op names a registry operation for diagnostics.
type Op string

const (
	OpRegister   Op = "register"
	OpStash      Op = "stash"
	OpStashByKey Op = "stash_by_key"
	OpReassign   Op = "reassign"
	OpSwitch     Op = "switch"
)

// OpEvent describes one registry operation for logging. Err is nil on
// success; failed operations carry one of the package sentinel errors (or a
// wrapped payload conversion error).
type OpEvent struct {
	Op       Op
	Class    string
	Branch   string
	Instance string
	Duration time.Duration
	Err      error
}

// Logger records registry operations. Implementations must not retain the
// event past the call. Loggers run outside the registry lock, so they may
// call back into the registry.
type Logger interface {
	LogOperation(OpEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(OpEvent)

// LogOperation implements Logger.
func (f LoggerFunc) LogOperation(event OpEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogOperation(OpEvent) {}

// WithLogger attaches an operation logger to the registry. The default is
// silent; pkg/apexlog provides a ready-made implementation.
func WithLogger(logger Logger) Option {
	return func(cfg *registryConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

func (r *Registry) begin() time.Time {
	return r.cfg.clock()
}

func (r *Registry) log(event OpEvent) {
	if r.cfg.logger == nil {
		return
	}
	r.cfg.logger.LogOperation(event)
}

// fail logs a non-fatal operation failure and returns false so call sites
// can report and bail in one statement.
func (r *Registry) fail(start time.Time, op Op, class, branch, instance string, err error) bool {
	r.log(OpEvent{
		Op:       op,
		Class:    class,
		Branch:   branch,
		Instance: instance,
		Duration: r.cfg.clock().Sub(start),
		Err:      err,
	})
	return false
}

func (r *Registry) ok(start time.Time, op Op, class, branch, instance string) {
	r.log(OpEvent{
		Op:       op,
		Class:    class,
		Branch:   branch,
		Instance: instance,
		Duration: r.cfg.clock().Sub(start),
	})
}
