// Package proposalvoting implements membership-gated proposal voting inside
// the dao-governance context.
//
// The module owns the proposal lifecycle (create, vote, execute), the shared
// treasury and its audit trail, and governance event production through an
// outbox. Every state change runs inside one ledger transaction so that
// membership, deadline, ballot and funds checks observe a consistent view.
// Membership and the marketplace are reached only through ports.
package proposalvoting
