package broadcasts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/youtube/v3"
)

func Test_FromLiveBroadcast(t *testing.T) {
	got := FromLiveBroadcast(&youtube.LiveBroadcast{
		Id: "x",
		Snippet: &youtube.LiveBroadcastSnippet{
			Title:              "T",
			ScheduledStartTime: "2024-01-01T00:00:00Z",
			Thumbnails:         &youtube.ThumbnailDetails{},
		},
		Status: &youtube.LiveBroadcastStatus{
			LifeCycleStatus: "ready",
			PrivacyStatus:   "public",
		},
	})
	assert.Equal(t, Broadcast{
		Id:                 "x",
		Title:              "T",
		ScheduledStartTime: "2024-01-01T00:00:00Z",
		Thumbnail:          nil,
		Status:             "ready",
		PrivacyStatus:      "public",
	}, got)

	// An absent thumbnail should serialize as an explicit null, and an empty
	// description should be omitted entirely
	data, err := json.Marshal(got)
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "x",
		"title": "T",
		"scheduledStartTime": "2024-01-01T00:00:00Z",
		"thumbnail": null,
		"status": "ready",
		"privacyStatus": "public"
	}`, string(data))
}

func Test_FromLiveBroadcast_withThumbnail(t *testing.T) {
	got := FromLiveBroadcast(&youtube.LiveBroadcast{
		Id: "abcd1234",
		Snippet: &youtube.LiveBroadcastSnippet{
			Title:              "Friday Night VHS",
			Description:        "tapes",
			ScheduledStartTime: "2024-01-05T02:00:00Z",
			Thumbnails: &youtube.ThumbnailDetails{
				Default: &youtube.Thumbnail{
					Url: "https://i.ytimg.com/vi/abcd1234/default_live.jpg",
				},
			},
		},
		Status: &youtube.LiveBroadcastStatus{
			LifeCycleStatus: "created",
			PrivacyStatus:   "unlisted",
		},
	})
	assert.NotNil(t, got.Thumbnail)
	assert.Equal(t, "https://i.ytimg.com/vi/abcd1234/default_live.jpg", *got.Thumbnail)
	assert.Equal(t, "tapes", got.Description)
}

func Test_FromLiveBroadcast_toleratesMissingParts(t *testing.T) {
	got := FromLiveBroadcast(&youtube.LiveBroadcast{Id: "bare"})
	assert.Equal(t, Broadcast{Id: "bare"}, got)
}
