// Package cli provides the interactive MeshMart command-line client.
//
// It wires configuration, the local session store, the gateway client and
// the transfer pipelines behind a small REPL.
//
// Key features:
//   - Register / Login / Logout, with the session kept between runs
//   - Product editing for administrators: stage files, change categories,
//     reorder, pick a thumbnail, validate and save
//   - One-step publish with removal of the product when nothing uploads
//   - Order download into a single zip archive
//
// Transfer commands run under a context that Ctrl-C cancels, leaving the
// REPL running.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
