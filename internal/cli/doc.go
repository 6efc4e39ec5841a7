// Package cli provides the interactive rolekeeper command-line client.
//
// It wires configuration, the identity platform, the role store and the
// session reconciler, then runs a REPL on top of the reconciler's actions.
// Typical flow: wait for the initial session to resolve, start a watcher
// that prints session changes, and execute user commands.
//
// Commands:
//   - signup / login / google / logout
//   - whoami: current user and role
//   - role <uid> <role>: write a Role Record (admin tool)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
