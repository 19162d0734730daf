// Package ingest drives the camera media pipeline: scanning the input
// tree into the catalog, resolving capture times, and copying or
// converting each file into the date-named output directory.
package ingest
