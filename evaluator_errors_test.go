package keep

import (
	"errors"
	"strings"
	"testing"
)

func TestEvaluationErrorFormatsAndUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := &EvaluationError{
		Engine: "expr",
		Expr:   "hp < 50",
		Where:  "player@*/p1",
		Err:    cause,
	}

	if !errors.Is(err, cause) {
		t.Fatalf("expected unwrap to reach cause")
	}
	msg := err.Error()
	for _, want := range []string{"keep:", "expr", `expr="hp < 50"`, "player@*/p1", "boom"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestWrapEvaluationErrorFillsMissingFields(t *testing.T) {
	inner := &EvaluationError{Err: errors.New("boom")}
	wrapped := wrapEvaluationError("cel", "hp < 50", "player@*", inner)

	var evalErr *EvaluationError
	if !errors.As(wrapped, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", wrapped)
	}
	if evalErr.Engine != "cel" || evalErr.Expr != "hp < 50" || evalErr.Where != "player@*" {
		t.Fatalf("expected fields filled, got %+v", evalErr)
	}
	if wrapEvaluationError("expr", "x", "y", nil) != nil {
		t.Fatalf("nil errors must stay nil")
	}
}

func TestWrapEvaluatorErrorKeepsPrefixedErrors(t *testing.T) {
	prefixed := errors.New("keep: function registry is nil")
	if wrapEvaluatorError("expr", prefixed) != prefixed {
		t.Fatalf("expected prefixed error passed through")
	}
	plain := errors.New("boom")
	wrapped := wrapEvaluatorError("expr", plain)
	if !errors.Is(wrapped, plain) || !strings.HasPrefix(wrapped.Error(), "keep:") {
		t.Fatalf("expected wrapped error, got %v", wrapped)
	}
}
