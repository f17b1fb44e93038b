package zaplog

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRuntimeLoggerFormatsAndCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewRuntimeLogger(zap.New(core))

	l.WithField("match", "m1").WithFields(map[string]interface{}{"round": 2}).Warn("player %s timed out", "p1")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Message != "player p1 timed out" || e.Level != zapcore.WarnLevel {
		t.Fatalf("entry = %+v", e)
	}
	ctx := e.ContextMap()
	if ctx["match"] != "m1" || ctx["round"] != int64(2) {
		t.Fatalf("context = %v", ctx)
	}
}

func TestRuntimeLoggerFieldsDoNotLeak(t *testing.T) {
	base := NewRuntimeLogger(nil)
	child := base.WithField("k", "v")
	if len(base.Fields()) != 0 {
		t.Fatalf("base fields = %v", base.Fields())
	}
	if child.Fields()["k"] != "v" {
		t.Fatalf("child fields = %v", child.Fields())
	}
}

func TestNewFallsBackOnBadLevel(t *testing.T) {
	l, err := New(Config{Level: "loud"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if !l.Core().Enabled(zapcore.InfoLevel) || l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected info level")
	}
}
