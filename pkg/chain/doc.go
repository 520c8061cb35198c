// Package chain implements an identity-keyed doubly linked list.
//
// Nodes are addressed by identity rather than position. A List can be
// rebuilt from a flat snapshot whose records name their own neighbors, and
// afterwards report which records changed presence or linkage relative to
// that snapshot.
//
// A List is not safe for concurrent use; callers sharing one across
// goroutines must guard it with their own lock.
package chain
