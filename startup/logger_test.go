package startup

import (
	"context"
	"github.com/sirupsen/logrus"
	"strings"
	"testing"
	"time"
)

func TestCustomFormatter(t *testing.T) {
	entry := logrus.NewEntry(logrus.New()).WithField("listing", "abc")
	entry.Time = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	entry.Level = logrus.WarnLevel
	entry.Message = "like notification not sent"

	out, err := (&CustomFormatter{}).Format(entry)
	if err != nil {
		t.Fatal(err)
	}
	line := string(out)
	if !strings.HasPrefix(line, "[2024-03-01T10:00:00Z] [warning] [ID-") {
		t.Errorf("line = %q", line)
	}
	if !strings.Contains(line, "like notification not sent listing=abc") || !strings.HasSuffix(line, "\n") {
		t.Errorf("line = %q", line)
	}
}

func TestNewTraceProviderWithoutExporter(t *testing.T) {
	tp := newTraceProvider(nil)
	_, span := tp.Tracer(serviceName).Start(context.Background(), "test")
	if !span.SpanContext().IsValid() {
		t.Error("span context should be valid")
	}
	span.End()
}
