// Package organizer names and places ingested media in the output
// directory. Output files are named YYYY_MM_DD_NNN.ext with a per-day
// counter persisted in the catalog, so numbering continues across runs and
// never collides with files already on disk.
package organizer
