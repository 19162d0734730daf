package tagger_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shoebox/internal/tagger"
	"shoebox/internal/testsupport"
)

func newSessionDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		testsupport.WriteFile(t, filepath.Join(dir, name), 32)
	}
	return dir
}

func TestRunRenamesAndStampsVideos(t *testing.T) {
	dir := newSessionDir(t, "clip_b.mp4", "clip_a.mp4")

	out := &bytes.Buffer{}
	session := tagger.NewSession(dir, nil,
		tagger.WithInput(strings.NewReader("2023-12-14\n2023-12-15\n")),
		tagger.WithOutput(out),
	)

	report, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Tagged != 2 || report.Skipped != 0 || report.Remaining != 0 {
		t.Fatalf("unexpected report: %#v", report)
	}

	// Files are visited in sorted order, so clip_a gets the first date.
	first := filepath.Join(dir, "2023_12_14_0.mp4")
	second := filepath.Join(dir, "2023_12_15_1.mp4")
	for _, path := range []string{first, second} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
	}

	info, err := os.Stat(first)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	want := time.Date(2023, 12, 14, 0, 0, 0, 0, time.Local)
	if !info.ModTime().Equal(want) {
		t.Fatalf("mtime = %v, want %v", info.ModTime(), want)
	}
}

func TestRunRepromptsOnInvalidDate(t *testing.T) {
	dir := newSessionDir(t, "clip.mp4")

	out := &bytes.Buffer{}
	session := tagger.NewSession(dir, nil,
		tagger.WithInput(strings.NewReader("14-12-2023\n2023-12-14\n")),
		tagger.WithOutput(out),
	)

	report, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Tagged != 1 {
		t.Fatalf("tagged = %d, want 1", report.Tagged)
	}
	if !strings.Contains(out.String(), "Invalid date format") {
		t.Fatalf("expected invalid-date message, got: %s", out.String())
	}
}

func TestRunSkipAndQuit(t *testing.T) {
	dir := newSessionDir(t, "a.mp4", "b.mp4", "c.mp4")

	session := tagger.NewSession(dir, nil,
		tagger.WithInput(strings.NewReader("s\nq\n")),
		tagger.WithOutput(&bytes.Buffer{}),
	)

	report, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Skipped != 1 || report.Tagged != 0 || report.Remaining != 2 {
		t.Fatalf("unexpected report: %#v", report)
	}

	// Skipped and remaining files keep their original names.
	for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s untouched: %v", name, err)
		}
	}
}

func TestRunNeverOverwritesExistingNames(t *testing.T) {
	dir := newSessionDir(t, "clip.mp4", "2023_12_14_0.mp4")

	// The already-named file sorts first; skip it and tag clip.mp4.
	session := tagger.NewSession(dir, nil,
		tagger.WithInput(strings.NewReader("s\n2023-12-14\n")),
		tagger.WithOutput(&bytes.Buffer{}),
	)

	report, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Tagged != 1 || report.Skipped != 1 {
		t.Fatalf("unexpected report: %#v", report)
	}
	if _, err := os.Stat(filepath.Join(dir, "2023_12_14_1.mp4")); err != nil {
		t.Fatalf("expected collision-safe name: %v", err)
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	out := &bytes.Buffer{}
	session := tagger.NewSession(dir, nil,
		tagger.WithInput(strings.NewReader("")),
		tagger.WithOutput(out),
	)

	report, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Tagged != 0 || report.Skipped != 0 || report.Remaining != 0 {
		t.Fatalf("unexpected report: %#v", report)
	}
	if !strings.Contains(out.String(), "No .mp4 files") {
		t.Fatalf("expected no-files message, got: %s", out.String())
	}
}
