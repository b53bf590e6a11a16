package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Info("ignored", String("k", "v"))
	if _, ok := l.With(Int("n", 1)).(NopLogger); !ok {
		t.Fatal("With on NopLogger should stay a NopLogger")
	}
}

func TestSlogAdapterEmitsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	l = l.With(String("component", "service"))
	l.Info("applied",
		Int("doc", 3),
		Uint64("change_version", 17),
		Duration("took", 5*time.Millisecond),
		Error("err", errors.New("boom")),
	)

	out := buf.String()
	for _, want := range []string{"applied", "component=service", "doc=3", "change_version=17", "err=boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q: %s", want, out)
		}
	}
}
