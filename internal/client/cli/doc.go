// Package cli provides the interactive WILT command-line client.
//
// It wires configuration, the local session store, the API gateway and an
// interactive REPL. Typical flow: log in (or register first), list today's
// entries, add new ones.
//
// Key features:
//   - Register / Login / Logout
//   - List / Add / Show / Edit / Delete entries
//   - Status of the session and connection, request statistics
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
