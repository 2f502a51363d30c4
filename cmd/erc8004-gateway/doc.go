// Package main (cmd/erc8004-gateway) runs the read-only HTTP gateway over
// the ERC-8004 registries. It binds to one network, serves the JSON API
// from package httpserver, and shuts down gracefully on SIGINT/SIGTERM.
package main
