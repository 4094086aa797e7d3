package keep

import (
	"time"

	"github.com/goliatone/go-keep/internal/bag"
	"github.com/goliatone/go-keep/pkg/activity"
	"github.com/goliatone/go-keep/record"
	"github.com/google/uuid"
)

// Bag is the property-name to value shape every payload and cached record
// takes at the registry boundary.
type Bag = record.Bag

// Match pairs an instance identifier with a cloned copy of its cached values,
// as returned by Query.
type Match struct {
	Instance string
	Values   Bag
}

// RuleContext carries the inputs a query expression is evaluated against.
// Record holds the cached values of the instance under evaluation.
type RuleContext struct {
	Record   Bag
	Class    string
	Branch   string
	Instance string
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaults()
	return *ctx.Now
}

// label identifies the record under evaluation in logs and errors.
func (ctx RuleContext) label() string {
	switch {
	case ctx.Class == "" && ctx.Branch == "":
		return "unknown"
	case ctx.Instance == "":
		return ctx.Class + "@" + ctx.Branch
	default:
		return ctx.Class + "@" + ctx.Branch + "/" + ctx.Instance
	}
}

// identifierBinding returns the bindings every evaluator backend exposes
// alongside the record's own properties.
func (ctx RuleContext) identifierBinding() map[string]any {
	return map[string]any{
		"class":    ctx.Class,
		"branch":   ctx.Branch,
		"instance": ctx.Instance,
	}
}

// Evaluator executes query expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// Option configures a Registry at construction time.
type Option func(*registryConfig)

type registryConfig struct {
	logger        Logger
	queryLogger   EvaluatorLogger
	evaluator     Evaluator
	programCache  ProgramCache
	functions     *FunctionRegistry
	activityHooks activity.Hooks
	codec         *bag.Codec
	revisionID    func() string
	clock         func() time.Time
}

func applyOptions(opts []Option) registryConfig {
	cfg := registryConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.codec == nil {
		cfg.codec = bag.New()
	}
	if cfg.revisionID == nil {
		cfg.revisionID = uuid.NewString
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}
	return cfg
}

// WithEvaluator configures the evaluator used by Query. Defaults to the
// expr-lang backend.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *registryConfig) {
		cfg.evaluator = e
	}
}

// WithRevisionIDs overrides the revision id generator stamped onto records on
// every stash. Defaults to uuid.NewString.
func WithRevisionIDs(fn func() string) Option {
	return func(cfg *registryConfig) {
		if fn != nil {
			cfg.revisionID = fn
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(fn func() time.Time) Option {
	return func(cfg *registryConfig) {
		if fn != nil {
			cfg.clock = fn
		}
	}
}
