package logger

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{"default config", DefaultConfig(), false},
		{"debug config", DebugConfig(), false},
		{"json to stdout", &Config{Level: InfoLevel, Format: JSONFormat, Output: StdoutOutput}, false},
		{"file output with path", &Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput, File: "/tmp/run.log"}, false},
		{"invalid level", &Config{Level: "verbose", Format: TextFormat, Output: StderrOutput}, true},
		{"invalid format", &Config{Level: InfoLevel, Format: "xml", Output: StderrOutput}, true},
		{"invalid output", &Config{Level: InfoLevel, Format: TextFormat, Output: "syslog"}, true},
		{"file output without path", &Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(DefaultConfig())
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if log == nil {
		t.Fatal("NewLogger() returned nil logger")
	}
}

func TestNewLogger_NilConfig(t *testing.T) {
	log, err := NewLogger(nil)
	if err != nil {
		t.Fatalf("NewLogger(nil) error = %v", err)
	}
	if log == nil {
		t.Fatal("NewLogger(nil) returned nil logger")
	}
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	_, err := NewLogger(&Config{Level: "bogus", Format: TextFormat, Output: StderrOutput})
	if err == nil {
		t.Fatal("NewLogger() expected error for invalid level")
	}
}

func TestLoggerChaining(t *testing.T) {
	log, err := NewLogger(DebugConfig())
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	chained := log.WithComponent("matcher").
		WithField("invoice_number", "INV-001").
		WithFields(Fields{"score": 0.96})
	if chained == nil {
		t.Fatal("chained logger is nil")
	}

	// Chained loggers must not share state with the original.
	if chained == log {
		t.Error("WithField should return a new logger instance")
	}
}

func TestOperationLogger(t *testing.T) {
	log, err := NewLogger(DebugConfig())
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	op := NewOperationLogger("test_run", log)
	if op == nil {
		t.Fatal("NewOperationLogger() returned nil")
	}

	// These must not panic and must carry the accumulated fields.
	op.WithField("documents", 2).Step("extract")
	op.Step("reconcile")
	op.Success("done")
}

func TestOperationLogger_NilLogger(t *testing.T) {
	op := NewOperationLogger("test_run", nil)
	if op == nil {
		t.Fatal("NewOperationLogger(nil) returned nil")
	}
	op.Error(errors.New("boom"), "failed")
}

func TestGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	if original == nil {
		t.Fatal("global logger not initialized")
	}

	replacement, err := NewLogger(DebugConfig())
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	SetGlobalLogger(replacement)

	if GetGlobalLogger() != replacement {
		t.Error("SetGlobalLogger did not replace the global instance")
	}
}
