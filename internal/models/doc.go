// Package models defines the core domain models for the ledger.
//
// # Models
//
//   - User: a registered account that can create and take part in expenses
//   - Expense: a single shared cost recorded by one user
//   - ParticipantShare: one user's portion of an expense
//   - SplitMethod: how an expense's amount is divided among participants
//
// # Design Principles
//
//  1. Relationships use ID strings, never pointers between models.
//  2. An Expense and its shares are created together and never modified.
//  3. Models carry no persistence or transport concerns; storage and the
//     RPC layer convert to and from them.
package models
