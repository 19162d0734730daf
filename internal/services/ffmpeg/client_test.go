package ffmpeg

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildArgsTranscodesNonAACAudio(t *testing.T) {
	args := buildArgs(ConvertRequest{
		InputPath:    "/in/MOV_0001.avi",
		OutputPath:   "/out/2023_12_14_001.mp4",
		AudioCodec:   "pcm_s16le",
		AudioBitrate: "192k",
	})
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-map_metadata 0",
		"-c:v copy",
		"-movflags +faststart",
		"-c:a aac -b:a 192k",
		"-progress pipe:1",
	} {
		require.Contains(t, joined, want)
	}
	require.Equal(t, "/out/2023_12_14_001.mp4", args[len(args)-1],
		"output path must be the final argument")
}

func TestBuildArgsCopiesAACAudio(t *testing.T) {
	args := buildArgs(ConvertRequest{
		InputPath:  "/in/MOV_0001.mp4",
		OutputPath: "/out/out.mp4",
		AudioCodec: "AAC",
	})
	joined := strings.Join(args, " ")
	require.Contains(t, joined, "-c:a copy")
	require.NotContains(t, joined, "-b:a", "bitrate flag should be absent when copying audio")
}

func TestBuildArgsDefaultsBitrate(t *testing.T) {
	args := buildArgs(ConvertRequest{
		InputPath:  "/in/a.mov",
		OutputPath: "/out/a.mp4",
	})
	require.Contains(t, strings.Join(args, " "), "-b:a 192k")
}

func TestApplyProgressLine(t *testing.T) {
	update := ProgressUpdate{}

	require.False(t, applyProgressLine(&update, "out_time_us=30000000", 60), "out_time_us should not emit")
	require.Equal(t, 30*time.Second, update.OutTime)
	require.Equal(t, float64(50), update.Percent)

	require.False(t, applyProgressLine(&update, "speed=2.5x", 60), "speed should not emit")
	require.Equal(t, "2.5x", update.Speed)

	require.True(t, applyProgressLine(&update, "progress=continue", 60))
	require.True(t, applyProgressLine(&update, "progress=end", 60))
	require.Equal(t, float64(100), update.Percent)
}

func TestApplyProgressLineClampsOverrun(t *testing.T) {
	update := ProgressUpdate{}
	applyProgressLine(&update, "out_time_us=90000000", 60)
	require.Equal(t, float64(100), update.Percent)
}

func TestApplyProgressLineIgnoresGarbage(t *testing.T) {
	update := ProgressUpdate{}
	require.False(t, applyProgressLine(&update, "not a progress line", 60))
	require.False(t, applyProgressLine(&update, "out_time_us=wat", 60))
}

func TestConvertValidatesPaths(t *testing.T) {
	cli := NewCLI()
	require.Error(t, cli.Convert(context.Background(), ConvertRequest{OutputPath: "/out/x.mp4"}, nil))
	require.Error(t, cli.Convert(context.Background(), ConvertRequest{InputPath: "/in/x.avi"}, nil))
}
