// Package storage persists per-run summaries so an operator can see what
// past sweeps did. It is strictly advisory: resumption correctness lives in
// the progress ledger, so history failures never fail a run.
package storage
