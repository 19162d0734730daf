// Package services holds the shared plumbing for external tool wrappers:
// sentinel error classification used by the ingest pipeline and context
// annotations that tie log lines back to catalog items, stages, and runs.
package services
