package storage

import (
	"context"

	"funny-video/internal/types"

	"gorm.io/gorm"
)

// VideoRepo writes published reels to the local "Video" table.
type VideoRepo struct {
	db *gorm.DB
}

func NewVideoRepo(db *gorm.DB) *VideoRepo {
	return &VideoRepo{db: db}
}

func (r *VideoRepo) InsertVideo(ctx context.Context, video *types.VideoRecord) error {
	if r.db == nil {
		return errDBNotInitialized
	}
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *VideoRepo) ListVideos(ctx context.Context, userId string, limit int) ([]types.VideoRecord, error) {
	if r.db == nil {
		return nil, errDBNotInitialized
	}
	var videos []types.VideoRecord
	query := r.db.WithContext(ctx).Order("id desc").Limit(limit)
	if userId != "" {
		query = query.Where("user_id = ?", userId)
	}
	if err := query.Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}
