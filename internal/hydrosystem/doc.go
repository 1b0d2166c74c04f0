// ABOUTME: Package doc for hydrosystem - device registration and linking
// ABOUTME: Documents part numbers, ownership, and the link confirmation flow

// Package hydrosystem manages hydro system (device) registrations.
//
// A system registers itself with a name and a password. Registration
// generates a uuid, reserves the next system id, and derives the printed
// part number from a random prefix, the signing environment, and that id.
// The password hash is stored alongside the registration so the device can
// authenticate later.
//
// Linking a system to a user is a two-step confirmation: the user requests
// a link, which pushes a six digit code to the system's socket; the system
// acknowledges with the user's id, which records the user as owner.
//
// Unregistering is restricted to the owning user or an administrator.
package hydrosystem
