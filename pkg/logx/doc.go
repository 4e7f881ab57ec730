// Package logx configures birdsweep's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - Optional file output JSON-structured and append-only, so a run's log
//     survives restarts alongside the progress ledger
package logx
