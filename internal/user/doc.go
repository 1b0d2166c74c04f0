// ABOUTME: Package doc for user - profile directory and credential management
// ABOUTME: Documents creation defaults, password update policies, and reset flow

// Package user manages user profiles and their credentials.
//
// New users are created with a default password and the forced-reset flag
// set, so the first login must change it. Creation announces the user on the
// general notification topic.
//
// Password updates come in three shapes with different authorization rules:
//
//   - UpdateOwnPassword re-verifies the caller's current password before
//     accepting the new one.
//   - UpdatePasswordByID lets the owner, or any principal ranking above the
//     target user's role, set a password directly.
//   - ResetPassword is only honored for principals whose token carries the
//     forced-reset flag, and clears the flag on success.
package user
