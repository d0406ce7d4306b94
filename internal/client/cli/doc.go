// Package cli provides the interactive booklib command-line client.
//
// It wires configuration, the REST API client and a small REPL. The session
// token lives in memory only, so every run starts logged out.
//
// Commands:
//   - signup, login, profile, logout
//   - list, show <id>, add, edit <id>, delete <id>
//   - cover <id> <image file> (when the server has cover uploads enabled)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
