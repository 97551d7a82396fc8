// Package broadcast serves the dashboard's view of the user's upcoming
// YouTube live broadcasts: it presents the session's stored credentials to the
// YouTube Data API, requests a single page of upcoming broadcasts, and
// reshapes each raw resource into the flat record the webapp renders. It's
// also where stale credentials come to light: YouTube rejecting the stored
// access token is what tears the session down.
package broadcast
