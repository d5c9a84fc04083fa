package linear_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"go.trai.ch/harvest/internal/adapters/linear"
)

func TestRenderer_TaskLifecycle(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)

	r.OnPlanEmit([]string{"feature-123", "bugfix-456"})
	if got := stdout.String(); got != "Processing 2 IDs: feature-123, bugfix-456\n" {
		t.Errorf("unexpected plan line: %q", got)
	}
	stdout.Reset()

	startTime := time.Now()
	r.OnTaskStart("span1", "feature-123", startTime)
	if !strings.Contains(stderr.String(), "[feature-123] Starting...") {
		t.Errorf("expected start message, got: %s", stderr.String())
	}

	r.OnTaskLog("span1", []byte("first line\n"))
	r.OnTaskLog("span1", []byte("second line\r\n"))

	if got, want := stdout.String(), "[feature-123] first line\n[feature-123] second line\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}

	r.OnTaskComplete("span1", startTime.Add(1500*time.Millisecond), nil)
	if !strings.Contains(stderr.String(), "[feature-123] ✓ Completed in 1.5s") {
		t.Errorf("expected completion message, got: %s", stderr.String())
	}

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestRenderer_PartialLines(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)

	r.OnTaskStart("span1", "a", time.Now())

	r.OnTaskLog("span1", []byte("partial"))
	if strings.Contains(stdout.String(), "partial") {
		t.Errorf("partial line should not be printed immediately")
	}

	r.OnTaskLog("span1", []byte(" line\nnext"))
	if got := stdout.String(); got != "[a] partial line\n" {
		t.Errorf("stdout = %q", got)
	}

	r.OnTaskComplete("span1", time.Now(), nil)
	if !strings.Contains(stdout.String(), "[a] next\n") {
		t.Errorf("expected flushed partial line, got: %q", stdout.String())
	}
}

func TestRenderer_Failure(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)

	start := time.Now()
	r.OnTaskStart("span1", "b", start)
	r.OnTaskComplete("span1", start.Add(20*time.Millisecond), errors.New("build failed"))

	if !strings.Contains(stderr.String(), "[b] ✗ Failed after 20ms: build failed") {
		t.Errorf("expected failure message, got: %s", stderr.String())
	}
}

func TestRenderer_InterleavedTasks(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)

	r.OnTaskStart("s1", "a", time.Now())
	r.OnTaskStart("s2", "b", time.Now())

	r.OnTaskLog("s1", []byte("from "))
	r.OnTaskLog("s2", []byte("hello b\n"))
	r.OnTaskLog("s1", []byte("a\n"))

	if got, want := stdout.String(), "[b] hello b\n[a] from a\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRenderer_UnknownSpan(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)

	r.OnTaskLog("missing", []byte("ignored\n"))
	r.OnTaskComplete("missing", time.Now(), nil)

	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Errorf("expected no output, got stdout=%q stderr=%q", stdout.String(), stderr.String())
	}
}

func TestRenderer_StopFlushes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr)

	r.OnTaskStart("s1", "a", time.Now())
	r.OnTaskLog("s1", []byte("tail"))

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := stdout.String(); got != "[a] tail\n" {
		t.Errorf("stdout = %q", got)
	}
}
