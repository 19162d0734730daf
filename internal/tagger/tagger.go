package tagger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"shoebox/internal/logging"
	"shoebox/internal/services"
)

const dateLayout = "2006-01-02"

// maxNameProbes bounds the search for a free file name within one day.
const maxNameProbes = 10000

// Report summarizes a tagging session.
type Report struct {
	Tagged    int
	Skipped   int
	Remaining int
}

// Session drives one interactive pass over a directory. Input and
// output default to stdin/stdout and are injectable for tests.
type Session struct {
	dir     string
	in      io.Reader
	out     io.Writer
	logger  *slog.Logger
	counter int
}

// Option adjusts a Session.
type Option func(*Session)

// WithInput replaces the prompt input stream.
func WithInput(r io.Reader) Option {
	return func(s *Session) { s.in = r }
}

// WithOutput replaces the prompt output stream.
func WithOutput(w io.Writer) Option {
	return func(s *Session) { s.out = w }
}

// NewSession prepares a tagging session over dir.
func NewSession(dir string, logger *slog.Logger, opts ...Option) *Session {
	s := &Session{
		dir:    dir,
		in:     os.Stdin,
		out:    os.Stdout,
		logger: logging.NewComponentLogger(logger, "tagger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run walks the directory's MP4 files in sorted order and prompts for
// a date per file. Entering "s" skips the current file and "q" ends
// the session; remaining files are reported untouched.
func (s *Session) Run(ctx context.Context) (Report, error) {
	var report Report

	files, err := s.listVideos()
	if err != nil {
		return report, err
	}
	if len(files) == 0 {
		fmt.Fprintf(s.out, "No .mp4 files found in %s\n", s.dir)
		return report, nil
	}

	reader := bufio.NewScanner(s.in)
	for index, path := range files {
		if err := ctx.Err(); err != nil {
			report.Remaining = len(files) - index
			return report, err
		}

		action, err := s.tagOne(reader, path, index+1, len(files))
		if err != nil {
			report.Remaining = len(files) - index
			return report, err
		}
		switch action {
		case actionTagged:
			report.Tagged++
		case actionSkipped:
			report.Skipped++
		case actionQuit:
			report.Remaining = len(files) - index
			fmt.Fprintf(s.out, "Stopped with %d file(s) remaining.\n", report.Remaining)
			return report, nil
		}
	}

	fmt.Fprintln(s.out, "All videos processed.")
	return report, nil
}

type action int

const (
	actionTagged action = iota
	actionSkipped
	actionQuit
)

func (s *Session) tagOne(reader *bufio.Scanner, path string, position, total int) (action, error) {
	name := filepath.Base(path)
	for {
		fmt.Fprintf(s.out, "[%d/%d] %s\n", position, total, name)
		fmt.Fprint(s.out, "Enter date (YYYY-MM-DD), s to skip, q to quit: ")

		line, err := readLine(reader)
		if err != nil {
			return actionQuit, err
		}
		switch strings.ToLower(line) {
		case "q", "quit":
			return actionQuit, nil
		case "s", "skip":
			s.logger.Info("skipped video", logging.String("path", path))
			return actionSkipped, nil
		case "":
			continue
		}

		capturedAt, err := time.ParseInLocation(dateLayout, line, time.Local)
		if err != nil {
			fmt.Fprintln(s.out, "Invalid date format. Use YYYY-MM-DD.")
			continue
		}

		newPath, err := s.rename(path, capturedAt)
		if err != nil {
			return actionQuit, err
		}
		fmt.Fprintf(s.out, "Renamed to %s\n", filepath.Base(newPath))
		s.logger.Info("tagged video",
			logging.String("source", path),
			logging.String("dest", newPath),
			logging.Time("captured_at", capturedAt),
		)
		return actionTagged, nil
	}
}

// rename moves path to <dir>/YYYY_MM_DD_<n>.mp4 and stamps the file
// times with the chosen date. The session counter only advances on a
// successful rename, and existing files are never overwritten.
func (s *Session) rename(path string, capturedAt time.Time) (string, error) {
	prefix := capturedAt.Format("2006_01_02")

	var newPath string
	for probes := 0; ; probes++ {
		if probes >= maxNameProbes {
			return "", services.Wrap(services.ErrValidation, "tag", "name video",
				fmt.Sprintf("no free name for %s_* in %s", prefix, s.dir), nil)
		}
		candidate := filepath.Join(s.dir, fmt.Sprintf("%s_%d.mp4", prefix, s.counter))
		if _, err := os.Stat(candidate); err != nil {
			if !os.IsNotExist(err) {
				return "", fmt.Errorf("check name %s: %w", candidate, err)
			}
			newPath = candidate
			break
		}
		s.counter++
	}

	if err := os.Rename(path, newPath); err != nil {
		return "", services.Wrap(services.ErrValidation, "tag", "rename video", "rename failed", err)
	}
	if err := os.Chtimes(newPath, capturedAt, capturedAt); err != nil {
		return "", fmt.Errorf("set file times for %s: %w", newPath, err)
	}
	s.counter++
	return newPath, nil
}

func (s *Session) listVideos() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "tag", "list videos", "directory is not readable", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".mp4") {
			files = append(files, filepath.Join(s.dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func readLine(reader *bufio.Scanner) (string, error) {
	if !reader.Scan() {
		if err := reader.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(reader.Text()), nil
}
