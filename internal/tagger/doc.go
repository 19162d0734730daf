// Package tagger implements the interactive video date workflow. It
// walks a directory of MP4 files, asks for a capture date per file,
// renames each file to a date-based name, and stamps the file times to
// match.
package tagger
