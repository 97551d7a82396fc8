package broadcasts

import (
	"google.golang.org/api/youtube/v3"
)

// Scopes declares the fixed set of read-only YouTube OAuth scopes that our app
// requests when initiating an authorization code grant flow
var Scopes = []string{
	"https://www.googleapis.com/auth/youtube.readonly",
	"https://www.googleapis.com/auth/youtube.force-ssl",
}

// Identity is the snapshot of user profile details that we fetch from Google
// once per login and store alongside the session's credentials
type Identity struct {
	Id      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Broadcast is the flattened view of an upcoming YouTube live broadcast that we
// serve to the webapp: it carries only the fields the dashboard renders, with
// everything else from the raw API resource dropped
type Broadcast struct {
	Id                 string  `json:"id"`
	Title              string  `json:"title"`
	Description        string  `json:"description,omitempty"`
	ScheduledStartTime string  `json:"scheduledStartTime"`
	Thumbnail          *string `json:"thumbnail"`
	Status             string  `json:"status"`
	PrivacyStatus      string  `json:"privacyStatus"`
}

// FromLiveBroadcast reshapes a raw liveBroadcasts resource into a Broadcast,
// tolerating missing snippet/status/thumbnail parts: Thumbnail is nil whenever
// the API response doesn't include a default thumbnail URL
func FromLiveBroadcast(item *youtube.LiveBroadcast) Broadcast {
	b := Broadcast{
		Id: item.Id,
	}
	if item.Snippet != nil {
		b.Title = item.Snippet.Title
		b.Description = item.Snippet.Description
		b.ScheduledStartTime = item.Snippet.ScheduledStartTime
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Default != nil && item.Snippet.Thumbnails.Default.Url != "" {
			url := item.Snippet.Thumbnails.Default.Url
			b.Thumbnail = &url
		}
	}
	if item.Status != nil {
		b.Status = item.Status.LifeCycleStatus
		b.PrivacyStatus = item.Status.PrivacyStatus
	}
	return b
}
