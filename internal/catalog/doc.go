// Package catalog persists the ingest catalog in SQLite: one row per
// discovered media file, its lifecycle status, the resolved capture time
// and its provenance, and the per-day counters that drive output naming.
package catalog
