package keep

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goliatone/go-keep/record"
)

// ErrNoEvaluator reports that no evaluator backend could be resolved.
var ErrNoEvaluator = errors.New("keep: evaluator not configured")

// Query evaluates expression against every record of class in the current
// branch and returns the instances whose expression result is true. Values in
// the returned matches are detached clones.
func (r *Registry) Query(class, expression string) ([]Match, error) {
	return r.QueryWith(RuleContext{}, class, expression)
}

// QueryWith is Query with caller-supplied evaluation bindings. The Record,
// Class, Branch and Instance fields of ctx are overwritten per record; Now,
// Args and Metadata pass through to the expression environment.
func (r *Registry) QueryWith(ctx RuleContext, class, expression string) ([]Match, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	evaluator, err := r.resolveEvaluator()
	if err != nil {
		return nil, err
	}

	branch, snapshots, err := r.snapshotBranch(class)
	if err != nil {
		return nil, err
	}

	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	matches, evalErr := evaluateSnapshots(evaluator, ctx, class, branch, expression, snapshots)
	duration := time.Since(start)
	if evalErr != nil {
		evalErr = wrapEvaluationError(engine, expression, "", evalErr)
	}
	r.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expression,
		Class:    class,
		Branch:   branch,
		Matches:  len(matches),
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return matches, nil
}

// snapshotBranch clones every record of class in the current branch so
// evaluation runs without holding the registry lock.
func (r *Registry) snapshotBranch(class string) (string, map[string]Bag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, ok := r.classes[class]
	if !ok {
		return "", nil, fmt.Errorf("keep: query class %q: %w", class, ErrUnknownClass)
	}
	branch := r.branch
	snapshots := map[string]Bag{}
	if pool, ok := node.branches[branch]; ok {
		for id, rec := range pool.instances {
			snapshots[id] = record.CloneBag(rec.values)
		}
	}
	return branch, snapshots, nil
}

func evaluateSnapshots(evaluator Evaluator, ctx RuleContext, class, branch, expression string, snapshots map[string]Bag) ([]Match, error) {
	ids := make([]string, 0, len(snapshots))
	for id := range snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, id := range ids {
		values := snapshots[id]
		recordCtx := ctx
		recordCtx.Record = values
		recordCtx.Class = class
		recordCtx.Branch = branch
		recordCtx.Instance = id
		result, err := rule.Evaluate(recordCtx.withDefaults())
		if err != nil {
			return nil, fmt.Errorf("instance %q: %w", id, err)
		}
		if matched, ok := result.(bool); ok && matched {
			matches = append(matches, Match{Instance: id, Values: values})
		}
	}
	return matches, nil
}

// resolveEvaluator returns the configured evaluator, building and caching the
// default expr backend on first use.
func (r *Registry) resolveEvaluator() (Evaluator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg.evaluator != nil {
		return r.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if r.cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(r.cfg.programCache))
	}
	if r.cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(r.cfg.functions))
	}
	evaluator := NewExprEvaluator(exprOpts...)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	r.cfg.evaluator = evaluator
	return evaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*keep.exprEvaluator":
		return "expr"
	case "*keep.celEvaluator":
		return "cel"
	case "*keep.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
