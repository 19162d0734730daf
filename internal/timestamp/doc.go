// Package timestamp resolves the capture time of camera media. Photos are
// read via EXIF, videos via the container creation_time tag; both fall back
// to the file modification time, and the result records which source won.
package timestamp
