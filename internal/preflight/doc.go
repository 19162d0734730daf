// Package preflight provides readiness checks for the filesystem paths
// and external binaries an ingest run depends on.
//
// These checks run in two contexts:
//   - The "run" and "scan" commands call RunAll before touching the
//     catalog, so a missing directory or binary fails fast instead of
//     partway through a batch.
//   - The "deps" command uses CheckSystemDeps to display tool health.
package preflight
