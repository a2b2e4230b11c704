// Package cli provides the interactive passgate reader.
//
// It wires configuration, the local unlock store, the gate server client
// and a REPL. Opening an article or a category runs the gate session:
// resources already unlocked on this install open straight away, gated ones
// prompt for the password until it is accepted or the prompt is left empty.
//
// Commands:
//   - article <slug> [category]: open an article
//   - category <name>: open a category
//   - read <slug> [category]: open an article and print its body
//   - unlocked: list local unlock records
//   - forget <key> / forget-all: drop local unlock records
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
