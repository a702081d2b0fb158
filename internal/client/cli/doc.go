// Package cli implements notesctl, the admin command-line client of the
// credential service.
//
// Commands:
//   - login [username]: sign in with a local password and print the session
//     token (export it as NOTES_AUTH_TOKEN for the admin commands)
//   - cleanup [combined|expired|used]: trigger a reset token cleanup
//   - stats: print reset token statistics
//   - reset-request <email>: ask for a password reset link
//   - reset <token>: set a new password with a reset token
package cli
