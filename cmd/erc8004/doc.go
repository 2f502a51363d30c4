// Package main (cmd/erc8004) implements the command-line client for the
// ERC-8004 agent registries.
//
// Read commands (agent, exists, owner, reputation, clients, read-feedback)
// need only a network selection; write commands (register, update-uri,
// feedback, revoke-feedback) additionally take a signing key via
// --private-key or the PRIVATE_KEY environment variable.
//
// Results print as indented JSON on stdout. With --json, errors are also
// emitted as {"error": message} on stdout with exit code 1, so the output
// stays machine-parseable either way. Logs go to stderr.
package main
