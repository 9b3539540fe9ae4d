// Package publish uploads finished videos to YouTube.
package publish

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"videoads/internal/domain"
)

// UploadScope allows uploading videos to the authorised channel.
const UploadScope = youtube.YoutubeUploadScope

const maxTitleLen = 100

var titleCleaner = strings.NewReplacer("<", "", ">", "", "\n", " ", "\r", " ")

// Source opens stored objects.
type Source interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// YouTube uploads generated videos with the configured privacy status.
type YouTube struct {
	videos  *youtube.VideosService
	source  Source
	privacy string
}

func NewYouTube(ctx context.Context, source Source, privacy string, opts ...option.ClientOption) (*YouTube, error) {
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("publish: youtube client: %w", err)
	}
	if privacy == "" {
		privacy = "unlisted"
	}
	return &YouTube{videos: svc.Videos, source: source, privacy: privacy}, nil
}

// Publish streams the object at key to YouTube and returns the new video id.
func (y *YouTube) Publish(ctx context.Context, v *domain.Video, key string) (string, error) {
	rc, err := y.source.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("publish: open %s: %w", key, err)
	}
	defer rc.Close()

	meta := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       Title(v),
			Description: v.Description,
		},
		Status: &youtube.VideoStatus{PrivacyStatus: y.privacy},
	}
	res, err := y.videos.Insert([]string{"snippet", "status"}, meta).
		Media(rc, googleapi.ContentType("video/mp4")).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("publish: youtube insert: %w", err)
	}
	return res.Id, nil
}

// Title derives a YouTube title from the video description. YouTube rejects
// angle brackets and titles over 100 characters.
func Title(v *domain.Video) string {
	t := strings.TrimSpace(titleCleaner.Replace(v.Description))
	if t == "" {
		t = strings.TrimSpace(v.BaseVideo + " " + v.ID)
	}
	if r := []rune(t); len(r) > maxTitleLen {
		t = strings.TrimSpace(string(r[:maxTitleLen]))
	}
	return t
}
