// Package diag carries severity-tagged messages out of the backend.
//
// Every backend operation reports through a single Handler registered when
// its context is created. Severities are informational: they never decide
// whether an operation succeeded, only how the message is presented.
package diag
