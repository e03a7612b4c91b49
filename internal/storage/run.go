package storage

import (
	"errors"

	"funny-video/internal/appcore"
	"funny-video/internal/types"

	"gorm.io/gorm"
)

var errDBNotInitialized = errors.New("database not initialized")

type RunRepo struct {
	db *gorm.DB
}

func NewRunRepo(db *gorm.DB) *RunRepo {
	return &RunRepo{db: db}
}

// SaveRun upserts by run_id. The primary key of an existing row is kept.
func (r *RunRepo) SaveRun(record *types.RunRecord) error {
	if r.db == nil {
		return errDBNotInitialized
	}
	var existing types.RunRecord
	result := r.db.Where("run_id = ?", record.RunId).First(&existing)
	if result.Error == nil {
		record.Id = existing.Id
		record.CreateTime = existing.CreateTime
		return r.db.Save(record).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return r.db.Create(record).Error
	}
	return result.Error
}

func (r *RunRepo) GetRun(runId string) (*types.RunRecord, error) {
	if r.db == nil {
		return nil, errDBNotInitialized
	}
	var record types.RunRecord
	if err := r.db.Where("run_id = ?", runId).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetRunHistory lists the newest runs first. An empty userId lists every user.
func (r *RunRepo) GetRunHistory(userId string, limit int) ([]types.RunRecord, error) {
	if r.db == nil {
		return nil, errDBNotInitialized
	}
	query := r.db.Order("create_time desc, id desc").Limit(limit)
	if userId != "" {
		query = query.Where("user_id = ?", userId)
	}
	var records []types.RunRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// MarkStaleRuns fails every run left pending or running by a previous process.
func (r *RunRepo) MarkStaleRuns() (int64, error) {
	if r.db == nil {
		return 0, errDBNotInitialized
	}
	result := r.db.Model(&types.RunRecord{}).
		Where("status IN ?", []string{string(appcore.RunStatusPending), string(appcore.RunStatusRunning)}).
		Updates(map[string]interface{}{
			"status":        string(appcore.RunStatusFailed),
			"current_stage": "",
			"fail_reason":   "服务重启，任务被中断 Run interrupted by server restart",
		})
	return result.RowsAffected, result.Error
}
