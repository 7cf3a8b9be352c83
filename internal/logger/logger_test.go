package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
)

// capture redirects output to a buffer for the duration of the test.
func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	if IsVerbose() {
		t.Fatal("verbose should start disabled")
	}
	SetVerbose(true)
	if !IsVerbose() {
		t.Fatal("SetVerbose(true) not applied")
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		log     func(string, ...any)
		verbose bool
		want    string
	}{
		{"debug verbose", Debug, true, "[DEBUG] embedded 3 chunks\n"},
		{"debug quiet", Debug, false, ""},
		{"info verbose", Info, true, "[INFO] embedded 3 chunks\n"},
		{"info quiet", Info, false, ""},
		{"warn verbose", Warn, true, "[WARN] embedded 3 chunks\n"},
		{"warn quiet", Warn, false, ""},
		{"error verbose", Error, true, "[ERROR] embedded 3 chunks\n"},
		{"error quiet", Error, false, "[ERROR] embedded 3 chunks\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose)
			tt.log("embedded %d chunks", 3)
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSection(t *testing.T) {
	buf := capture(t, false)
	Section("Analysis")
	if buf.Len() != 0 {
		t.Fatalf("section printed while quiet: %q", buf.String())
	}

	SetVerbose(true)
	Section("Analysis")
	if got := buf.String(); got != "\n=== Analysis ===\n" {
		t.Errorf("got %q", got)
	}
}

func TestTimed(t *testing.T) {
	buf := capture(t, true)
	done := Timed("synthesis")
	done()

	got := buf.String()
	if !strings.HasPrefix(got, "[DEBUG] synthesis took ") {
		t.Errorf("got %q", got)
	}
}

func TestWriter(t *testing.T) {
	buf := capture(t, false)
	w := Writer()

	n, err := w.Write([]byte("dropped"))
	if err != nil || n != len("dropped") {
		t.Fatalf("quiet write: n=%d err=%v", n, err)
	}
	if buf.Len() != 0 {
		t.Fatalf("quiet writer leaked %q", buf.String())
	}

	SetVerbose(true)
	if _, err := w.Write([]byte("kept")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "kept" {
		t.Errorf("got %q", buf.String())
	}
}

func TestConcurrentUse(t *testing.T) {
	buf := capture(t, false)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(on bool) {
			defer wg.Done()
			SetVerbose(on)
		}(i%2 == 0)
		go func() {
			defer wg.Done()
			Error("task failed")
		}()
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "[ERROR] task failed\n"); got != 20 {
		t.Errorf("got %d error lines, want 20", got)
	}
}
