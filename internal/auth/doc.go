// Package auth implements the server side of a Google OAuth 2.0 authorization
// code grant flow, as described here:
//
// - https://developers.google.com/identity/protocols/oauth2/web-server
//
// The webapp calls GET /auth/authorize to obtain a Google-hosted consent URL,
// carrying a freshly-minted anti-forgery state token, the read-only YouTube
// scopes our backend requires, and access_type=offline with prompt=consent so
// that Google issues a refresh token even on repeat logins. Once the user
// approves, Google redirects them to GET /auth/callback with an authorization
// code, which we exchange server-to-server for a token bundle before fetching
// the user's profile and binding both to their session.
//
// The state token is validated and consumed before anything else happens in
// the callback: a request bearing a state value we didn't mint (or one that
// was already used) is turned away without ever costing us a round trip to
// Google, and a state consumed by a callback that later failed can never be
// retried - the webapp has to start a fresh flow.
package auth
