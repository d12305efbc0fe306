package persist

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no migrations embedded")
	}
	for _, e := range entries {
		body, err := migrations.ReadFile("migrations/" + e.Name())
		if err != nil {
			t.Fatalf("%s: %v", e.Name(), err)
		}
		s := string(body)
		if !strings.Contains(s, "-- +goose Up") || !strings.Contains(s, "-- +goose Down") {
			t.Errorf("%s lacks goose annotations", e.Name())
		}
	}
}

func TestGooseLoggerWritesDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gooseLogger{log: zap.New(core)}.Printf("OK   %s\n", "00001_wave_log.sql")

	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zapcore.DebugLevel || entries[0].Message != "OK   00001_wave_log.sql" {
		t.Fatalf("entries = %+v", entries)
	}
}
