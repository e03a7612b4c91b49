package storage

import (
	"context"
	"fmt"

	"funny-video/internal/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

const insertVideoSQL = `INSERT INTO "Video" (user_id, title, description, first_image_url, result_video_url, duration, update_time)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

// PgVideoRepo writes published reels to a Postgres "Video" table, such as the
// one hosted by Supabase.
type PgVideoRepo struct {
	pool *pgxpool.Pool
}

func NewPgVideoRepo(ctx context.Context, dsn string) (*PgVideoRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PgVideoRepo{pool: pool}, nil
}

func (r *PgVideoRepo) InsertVideo(ctx context.Context, video *types.VideoRecord) error {
	var id int64
	err := r.pool.QueryRow(ctx, insertVideoSQL,
		video.UserId,
		video.Title,
		video.Description,
		video.FirstImageUrl,
		video.ResultVideoUrl,
		video.Duration,
		video.UpdateTime,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	video.Id = uint64(id)
	return nil
}

func (r *PgVideoRepo) Close() {
	r.pool.Close()
}
