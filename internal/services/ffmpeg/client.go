package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// aacCodec is the audio codec that avoids a transcode.
const aacCodec = "aac"

// ProgressUpdate captures ffmpeg conversion progress.
type ProgressUpdate struct {
	Percent float64
	OutTime time.Duration
	Speed   string
}

// ConvertRequest describes a single conversion.
type ConvertRequest struct {
	InputPath  string
	OutputPath string
	// AudioCodec is the source's first audio codec as reported by ffprobe.
	// When it is already AAC the audio stream is copied instead of re-encoded.
	AudioCodec   string
	AudioBitrate string
	// DurationSeconds scales out_time into a percentage; 0 disables
	// percent reporting.
	DurationSeconds float64
}

// Client defines ffmpeg conversion behaviour.
type Client interface {
	Convert(ctx context.Context, req ConvertRequest, progress func(ProgressUpdate)) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Convert runs ffmpeg and streams progress updates until the conversion
// finishes. The output file is written to req.OutputPath.
func (c *CLI) Convert(ctx context.Context, req ConvertRequest, progress func(ProgressUpdate)) error {
	if strings.TrimSpace(req.InputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return errors.New("output path required")
	}

	cmd := commandContext(ctx, c.binary, buildArgs(req)...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	update := ProgressUpdate{}
	for scanner.Scan() {
		if applyProgressLine(&update, scanner.Text(), req.DurationSeconds) && progress != nil {
			progress(update)
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return fmt.Errorf("read ffmpeg output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("ffmpeg convert failed: %w: %s", err, lastLine(detail))
		}
		return fmt.Errorf("ffmpeg convert failed: %w", err)
	}
	return nil
}

func buildArgs(req ConvertRequest) []string {
	args := []string{
		"-y", "-nostdin",
		"-i", req.InputPath,
		"-map_metadata", "0",
		"-c:v", "copy",
		"-movflags", "+faststart",
	}

	if strings.EqualFold(strings.TrimSpace(req.AudioCodec), aacCodec) {
		args = append(args, "-c:a", "copy")
	} else {
		bitrate := strings.TrimSpace(req.AudioBitrate)
		if bitrate == "" {
			bitrate = "192k"
		}
		args = append(args, "-c:a", aacCodec, "-b:a", bitrate)
	}

	args = append(args,
		"-progress", "pipe:1",
		"-nostats",
		"-loglevel", "error",
		req.OutputPath,
	)
	return args
}

// applyProgressLine folds one "key=value" progress line into update and
// reports whether the update is ready to emit (ffmpeg flushes a block of
// keys ending with "progress=continue" or "progress=end").
func applyProgressLine(update *ProgressUpdate, line string, durationSeconds float64) bool {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return false
	}
	value = strings.TrimSpace(value)
	switch key {
	case "out_time_us":
		if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
			update.OutTime = time.Duration(us) * time.Microsecond
			if durationSeconds > 0 {
				percent := update.OutTime.Seconds() / durationSeconds * 100
				if percent > 100 {
					percent = 100
				}
				update.Percent = percent
			}
		}
		return false
	case "speed":
		update.Speed = value
		return false
	case "progress":
		if value == "end" {
			update.Percent = 100
		}
		return true
	default:
		return false
	}
}

func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}
	return s
}

var _ Client = (*CLI)(nil)
