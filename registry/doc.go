// Package registry implements the ERC-8004 registry client: identity
// lookups, existence checks, ownership counts and reputation summaries on
// the read side, and registration, pointer updates and feedback
// submission on the write side.
//
// The client composes three collaborators: the static network table
// (package networks) for contract addresses, a ChainAccess implementation
// for contract calls and receipt waiting, and the metadata fetcher
// (package metadata) for resolving remote token URIs. Write failures from
// the chain are propagated verbatim; ancillary read lookups (token URI,
// remote metadata, mint-log id extraction) degrade to absent fields
// instead of failing the operation.
package registry
