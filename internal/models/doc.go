// Package models defines the core domain models for the ordering kiosk.
//
// # Catalog Models
//
// MenuItem and AddOn are immutable catalog entries owned by the catalog
// collaborator. The kiosk never writes them.
//
// # Session Models
//
// CartLine and Customization describe what the guest is assembling. A
// CartLine captures the menu item's name and unit price at the moment it is
// added, so later catalog edits never change a line that is already in the
// cart.
//
// # Persisted Models
//
// Order and OrderLine are snapshots handed to the order store at checkout.
// They are fully decoupled from the catalog: every price and name they carry
// was copied at checkout time.
//
// # Identifiers
//
//  1. Cart lines use the menu item id plus a random suffix so removal by id is
//     unambiguous even when the same item is added twice.
//  2. Orders carry a UUID primary key and a separate 3-digit display number.
package models
