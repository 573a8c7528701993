package logger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/convertly/leadscore/pkg/logger"
)

func TestInitAndGet(t *testing.T) {
	if err := logger.Init("text"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if logger.Get() == nil {
		t.Fatal("Get returned nil after Init")
	}

	if err := logger.Init("json"); err != nil {
		t.Fatalf("Init(json) failed: %v", err)
	}
}

func TestNamed(t *testing.T) {
	_ = logger.Init("text")
	l := logger.Named("provider")
	if l == nil {
		t.Fatal("Named returned nil")
	}
	// Named loggers must be independently usable.
	l.Info(context.Background(), "hello", logger.String("k", "v"))
}

func TestSetLevelString(t *testing.T) {
	cases := []struct {
		level string
		ok    bool
	}{
		{"debug", true},
		{"info", true},
		{"", true},
		{"WARN", true},
		{"warning", true},
		{"error", true},
		{"verbose", false},
	}
	for _, tc := range cases {
		err := logger.SetLevelString(tc.level)
		if tc.ok && err != nil {
			t.Errorf("SetLevelString(%q) unexpected error: %v", tc.level, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("SetLevelString(%q) expected error, got nil", tc.level)
		}
	}
}

func TestFieldConstructors(t *testing.T) {
	f := logger.String("a", "b")
	if f.Key != "a" || f.Value != "b" {
		t.Errorf("String field mismatch: %+v", f)
	}
	if f := logger.Int("n", 3); f.Value != 3 {
		t.Errorf("Int field mismatch: %+v", f)
	}
	if f := logger.Float64("f", 0.5); f.Value != 0.5 {
		t.Errorf("Float64 field mismatch: %+v", f)
	}
	if f := logger.Bool("b", true); f.Value != true {
		t.Errorf("Bool field mismatch: %+v", f)
	}
	if f := logger.Duration("d", 2*time.Second); f.Value != "2s" {
		t.Errorf("Duration field mismatch: %+v", f)
	}
	err := errors.New("boom")
	if f := logger.Error(err); f.Key != "error" {
		t.Errorf("Error field mismatch: %+v", f)
	}
}
