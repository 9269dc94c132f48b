// Package domain contains core concepts of the bridge.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

// Participant binds a stable identity to its current display name inside
// one chat. Visibility mirrors the peer's reachability: friends stay in
// the roster across disconnects, they only toggle visibility.
//
// Invariant: at most one Participant per Identity per Chat. Renames update
// the record in place instead of creating a second entry, so the nick list
// and the membership set can never diverge.
type Participant struct {
	Identity Identity
	Name     string
	Visible  bool
}
