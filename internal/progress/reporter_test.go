package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{w: &buf}

	r.Start(2, "Adding")
	update := Func(r)
	update(1, 2)
	update(2, 2)
	r.Finish()

	want := "Adding: 2 document(s)\n[1/2] 1/2 documents\n[2/2] 2/2 documents\nDone\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestNewReporter(t *testing.T) {
	if _, ok := NewReporter(true).(Nop); !ok {
		t.Error("quiet reporter should be Nop")
	}

	t.Setenv("CI", "true")
	if _, ok := NewReporter(false).(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}

func TestTerminalReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &TerminalReporter{w: &buf}

	r.Update(1, "before start is ignored")
	r.Start(3, "Ingesting")
	r.Update(2, "halfway")
	r.Finish()

	if !strings.Contains(buf.String(), "halfway") && !strings.Contains(buf.String(), "Ingesting") {
		t.Errorf("progress bar wrote nothing useful: %q", buf.String())
	}
}
