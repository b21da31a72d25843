package catalog

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"schoolradio/internal/models"
)

const pageSize = 50

// YouTube implements Source against the YouTube Data API v3 with an API key.
// Durations come from a second videos.list call because playlistItems does
// not carry contentDetails.duration.
type YouTube struct {
	service *youtube.Service
}

func NewYouTube(ctx context.Context, apiKey string) (*YouTube, error) {
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogFetch, err)
	}
	return &YouTube{service: service}, nil
}

func (y *YouTube) FetchPlaylist(ctx context.Context, catalogID string) ([]models.Track, error) {
	var tracks []models.Track
	pageToken := ""

	for {
		call := y.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(catalogID).
			MaxResults(pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCatalogFetch, err)
		}

		for _, item := range resp.Items {
			if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
				continue
			}
			track := models.Track{ID: item.ContentDetails.VideoId}
			if item.Snippet != nil {
				track.Title = item.Snippet.Title
				track.Channel = item.Snippet.VideoOwnerChannelTitle
				track.Thumbnails = thumbnailURLs(item.Snippet.Thumbnails)
			}
			tracks = append(tracks, track)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if len(tracks) == 0 {
		return nil, ErrEmptyCatalog
	}

	if err := y.fillDurations(ctx, tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// fillDurations batches videos.list calls to resolve per-track durations.
// A video that no longer resolves keeps duration 0 and gets the default.
func (y *YouTube) fillDurations(ctx context.Context, tracks []models.Track) error {
	byID := make(map[string]int, len(tracks))
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		byID[t.ID] = i
		ids[i] = t.ID
	}

	for start := 0; start < len(ids); start += pageSize {
		end := start + pageSize
		if end > len(ids) {
			end = len(ids)
		}

		resp, err := y.service.Videos.List([]string{"contentDetails"}).
			Id(ids[start:end]...).
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCatalogFetch, err)
		}

		for _, item := range resp.Items {
			i, ok := byID[item.Id]
			if !ok || item.ContentDetails == nil {
				continue
			}
			tracks[i].DurationMs = models.ParseISODuration(item.ContentDetails.Duration)
		}
	}
	return nil
}

func thumbnailURLs(details *youtube.ThumbnailDetails) map[string]string {
	if details == nil {
		return nil
	}
	urls := make(map[string]string)
	if details.Default != nil {
		urls["default"] = details.Default.Url
	}
	if details.Medium != nil {
		urls["medium"] = details.Medium.Url
	}
	if details.High != nil {
		urls["high"] = details.High.Url
	}
	if details.Maxres != nil {
		urls["maxres"] = details.Maxres.Url
	}
	if len(urls) == 0 {
		return nil
	}
	return urls
}
