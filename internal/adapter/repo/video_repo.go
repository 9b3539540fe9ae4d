package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"videoads/internal/domain"
	"videoads/internal/infra"
	"videoads/internal/sqlinline"
)

// VideoRepositoryPG implements domain.VideoRepository using PostgreSQL.
type VideoRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewVideoRepository creates a new video repository backed by PostgreSQL.
func NewVideoRepository(sql infra.SQLExecutor) *VideoRepositoryPG {
	return &VideoRepositoryPG{sql: sql}
}

// List returns every video, newest first.
func (r *VideoRepositoryPG) List(ctx context.Context) ([]domain.Video, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListVideos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *video)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return videos, nil
}

// Get fetches a video by id.
func (r *VideoRepositoryPG) Get(ctx context.Context, id string) (*domain.Video, error) {
	video, err := scanVideo(r.sql.QueryRow(ctx, sqlinline.QSelectVideo, id))
	if err != nil {
		return nil, mapError(err)
	}
	return video, nil
}

// Create inserts a new video record.
func (r *VideoRepositoryPG) Create(ctx context.Context, video *domain.Video) error {
	configs, err := json.Marshal(video.Configs)
	if err != nil {
		return fmt.Errorf("encode video configs: %w", err)
	}
	keys, err := json.Marshal(video.ProductKeys)
	if err != nil {
		return fmt.Errorf("encode product keys: %w", err)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertVideo,
		video.ID,
		video.Description,
		video.BaseVideo,
		configs,
		keys,
		video.Status,
	)
	return mapError(row.Scan(&video.CreatedAt, &video.UpdatedAt))
}

// ClaimNext moves the oldest queued video to processing and returns it.
// Concurrent callers never receive the same video.
func (r *VideoRepositoryPG) ClaimNext(ctx context.Context) (*domain.Video, error) {
	video, err := scanVideo(r.sql.QueryRow(ctx, sqlinline.QWorkerClaimVideo))
	if err != nil {
		return nil, mapError(err)
	}
	return video, nil
}

// MarkDone records the generated object key of a finished video.
func (r *VideoRepositoryPG) MarkDone(ctx context.Context, id, generatedVideo string) error {
	return affected(r.sql.Exec(ctx, sqlinline.QMarkVideoDone, id, generatedVideo))
}

// MarkError records a generation failure.
func (r *VideoRepositoryPG) MarkError(ctx context.Context, id, message string) error {
	return affected(r.sql.Exec(ctx, sqlinline.QMarkVideoError, id, message))
}

// MarkPublished records the YouTube id of an uploaded done video.
func (r *VideoRepositoryPG) MarkPublished(ctx context.Context, id, youtubeID string) error {
	return affected(r.sql.Exec(ctx, sqlinline.QMarkVideoPublished, id, youtubeID))
}

// Touch refreshes updated_at of a processing video so a long render is not
// mistaken for an abandoned one.
func (r *VideoRepositoryPG) Touch(ctx context.Context, id string) error {
	return affected(r.sql.Exec(ctx, sqlinline.QTouchVideo, id))
}

// RequeueStale returns processing videos untouched for longer than olderThan
// to the queue and reports how many were moved.
func (r *VideoRepositoryPG) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QRequeueStaleVideos, olderThan.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteByGenerated removes the video whose generated object key matches and
// returns the deleted record.
func (r *VideoRepositoryPG) DeleteByGenerated(ctx context.Context, generatedVideo string) (*domain.Video, error) {
	video, err := scanVideo(r.sql.QueryRow(ctx, sqlinline.QDeleteVideoByGenerated, generatedVideo))
	if err != nil {
		return nil, mapError(err)
	}
	return video, nil
}

// DeleteByID removes a video by id and returns the deleted record.
func (r *VideoRepositoryPG) DeleteByID(ctx context.Context, id string) (*domain.Video, error) {
	video, err := scanVideo(r.sql.QueryRow(ctx, sqlinline.QDeleteVideoByID, id))
	if err != nil {
		return nil, mapError(err)
	}
	return video, nil
}

func scanVideo(row pgx.Row) (*domain.Video, error) {
	var v domain.Video
	var configs, keys []byte
	if err := row.Scan(
		&v.ID,
		&v.Description,
		&v.BaseVideo,
		&configs,
		&keys,
		&v.Status,
		&v.GeneratedVideo,
		&v.ErrorMessage,
		&v.YouTubeID,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(configs) > 0 {
		if err := json.Unmarshal(configs, &v.Configs); err != nil {
			return nil, fmt.Errorf("decode configs of video %s: %w", v.ID, err)
		}
	}
	if len(keys) > 0 {
		if err := json.Unmarshal(keys, &v.ProductKeys); err != nil {
			return nil, fmt.Errorf("decode product keys of video %s: %w", v.ID, err)
		}
	}
	return &v, nil
}

var _ domain.VideoRepository = (*VideoRepositoryPG)(nil)
