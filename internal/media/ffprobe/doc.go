// Package ffprobe wraps the ffprobe binary for media inspection: stream
// layout, container metadata, and the creation_time tag used for capture
// time resolution.
package ffprobe
