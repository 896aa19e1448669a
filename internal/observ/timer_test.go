package observ

import (
	"bytes"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	timer.now = fakeClock(5 * time.Millisecond)

	endLoad := timer.Begin("load")
	endLoad("3 scenes")
	endCheck := timer.Begin("validate")
	endCheck("")

	report := timer.Report()
	if len(report.Phases) != 2 || report.TotalMS != 10 {
		t.Fatalf("report = %+v", report)
	}
	if report.Phases[0].Name != "load" || report.Phases[0].DurationMS != 5 || report.Phases[0].Note != "3 scenes" {
		t.Fatalf("load phase = %+v", report.Phases[0])
	}

	var buf bytes.Buffer
	timer.WriteSummary(&buf)
	want := "timings:\n" +
		"  load             5.00 ms  (3 scenes)\n" +
		"  validate         5.00 ms\n" +
		"  total           10.00 ms\n"
	if buf.String() != want {
		t.Fatalf("summary =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestEmptyTimer(t *testing.T) {
	report := NewTimer().Report()
	if report.TotalMS != 0 || len(report.Phases) != 0 {
		t.Fatalf("report = %+v", report)
	}
}
