package ffprobe

import (
	"math"
	"testing"
	"time"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video", CodecName: "h264"},
			{CodecType: "audio", CodecName: "pcm_s16le"},
			{CodecType: "audio", CodecName: "aac"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
		},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.FirstAudioCodec() != "pcm_s16le" {
		t.Fatalf("unexpected first audio codec: %q", result.FirstAudioCodec())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}

func TestCreationTimeParsesISOVariants(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"fractional z", "2023-12-14T10:30:00.000000Z", time.Date(2023, 12, 14, 10, 30, 0, 0, time.UTC)},
		{"plain z", "2023-12-14T10:30:00Z", time.Date(2023, 12, 14, 10, 30, 0, 0, time.UTC)},
		{"space separated", "2023-12-14 10:30:00", time.Date(2023, 12, 14, 10, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Result{Format: Format{Tags: map[string]string{"creation_time": tc.value}}}
			got, ok := result.CreationTime()
			if !ok {
				t.Fatalf("expected creation time for %q", tc.value)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("creation time = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCreationTimeMissingOrUnparseable(t *testing.T) {
	if _, ok := (Result{}).CreationTime(); ok {
		t.Fatal("expected no creation time for empty tags")
	}
	result := Result{Format: Format{Tags: map[string]string{"creation_time": "not a date"}}}
	if _, ok := result.CreationTime(); ok {
		t.Fatal("expected unparseable creation time to be rejected")
	}
}

func TestCreationTimeTagLookupIsCaseInsensitive(t *testing.T) {
	result := Result{Format: Format{Tags: map[string]string{"CREATION_TIME": "2023-12-14T10:30:00Z"}}}
	if _, ok := result.CreationTime(); !ok {
		t.Fatal("expected tag lookup to ignore case")
	}
}
