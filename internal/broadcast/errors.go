package broadcast

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrNotAuthenticated indicates that the requesting session holds no usable
// credentials: the user needs to log in before listing broadcasts
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrCredentialsExpired indicates that a session's stored credentials looked
// fine locally but were rejected by YouTube: the session has been destroyed
// and the user needs to log in again
var ErrCredentialsExpired = errors.New("credentials expired")

// UpstreamError is any other downstream failure; Detail is safe to show to the
// client and never carries Google's raw error payload
type UpstreamError struct {
	Detail string
}

func (e *UpstreamError) Error() string {
	return e.Detail
}

// classifyListError maps the heterogeneous failures that can come out of a
// liveBroadcasts call onto the small set of errors the rest of the service
// understands; all provider-specific error parsing lives here
func classifyListError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized {
			return ErrCredentialsExpired
		}
		return &UpstreamError{Detail: fmt.Sprintf("YouTube API request failed with status %d", apiErr.Code)}
	}
	return &UpstreamError{Detail: "failed to reach YouTube API"}
}
