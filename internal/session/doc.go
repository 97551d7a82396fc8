// Package session maintains the server-side record that binds a browser (via
// an opaque, HMAC-signed cookie) to the OAuth credentials and identity claims
// established when the user completes a login. Sessions live in process memory
// with a fixed maximum lifetime; there is deliberately no persistence, so a
// server restart logs everybody out.
package session
