// Package ffmpeg wraps the ffmpeg binary for MP4 conversion. Video streams
// are copied, audio is transcoded to AAC unless the source is already AAC,
// and container metadata is carried over. Progress is parsed from ffmpeg's
// machine-readable -progress output.
package ffmpeg
