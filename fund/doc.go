// Package fund holds the entity graph of a venture fund: the fund itself, its
// portfolio startups, and its members.
//
// Entities live in an arena owned by the Fund and refer to each other through
// stable integer IDs. A MemberID or StartupID is the index of the entity in
// the order it was created, so IDs never change and entities are never
// removed, even after a startup fails or is acquired.
package fund
