package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestFromWrapsUnknown(t *testing.T) {
	err := From(fmt.Errorf("boom"))
	if err.Code != CodeInternalError {
		t.Fatalf("expected internal error code, got %s", err.Code)
	}
	if err.Details["cause"] != "boom" {
		t.Fatalf("expected cause detail, got %v", err.Details["cause"])
	}
}

func TestFromKeepsTypedThroughWrapping(t *testing.T) {
	base := NewMissingColumn("a.csv", "Developer(s)")
	wrapped := fmt.Errorf("load: %w", base)
	if got := CodeOf(wrapped); got != CodeSchema {
		t.Fatalf("expected %s, got %s", CodeSchema, got)
	}
}

func TestNewIOUnwraps(t *testing.T) {
	err := NewIO("missing.csv", fs.ErrNotExist)
	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected errors.Is to reach fs.ErrNotExist")
	}
	if !strings.Contains(err.Error(), "path=missing.csv") {
		t.Fatalf("expected path in message, got %q", err.Error())
	}
}

func TestCodeOfNil(t *testing.T) {
	if CodeOf(nil) != "" {
		t.Fatalf("expected empty code for nil")
	}
}

func TestNewInvalidInput(t *testing.T) {
	e := NewInvalidInput("bad", "hint", map[string]any{"field": "x"})
	if e.Code != CodeInvalidInput {
		t.Fatalf("expected %s, got %s", CodeInvalidInput, e.Code)
	}
}
