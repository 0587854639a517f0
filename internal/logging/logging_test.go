package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := NewLogger("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewLoggerDefaultsToInfo(t *testing.T) {
	l, err := NewLogger("")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if !l.Core().Enabled(zapcore.InfoLevel) || l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected info level logger")
	}
}

func TestWithFieldsSkipsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := WithFields(zap.New(core), Fields{Component: "releases", File: "a.csv"})
	l.Info("x")
	entry := logs.All()[0]
	ctx := entry.ContextMap()
	if ctx["component"] != "releases" || ctx["file"] != "a.csv" {
		t.Fatalf("unexpected fields %v", ctx)
	}
	if _, ok := ctx["stage"]; ok {
		t.Fatalf("stage should be omitted when empty")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatalf("expected nop logger")
	}
}
