package types

// RunRecord is the persisted status of one run.
type RunRecord struct {
	Id             uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RunId          string `gorm:"uniqueIndex;size:64" json:"run_id"`
	UserId         string `gorm:"index;size:128" json:"user_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Moments        string `json:"moments"`
	SourcePath     string `json:"source_path"`
	WorkDir        string `json:"work_dir"`
	Status         string `gorm:"index;size:16" json:"status"`
	CurrentStage   string `gorm:"size:16" json:"current_stage"`
	Timestamps     string `json:"timestamps"`
	Outcomes       string `json:"outcomes"`
	MergedPath     string `json:"merged_path"`
	CoverPath      string `json:"cover_path"`
	FirstImageUrl  string `json:"first_image_url"`
	ResultVideoUrl string `json:"result_video_url"`
	Duration       string `json:"duration"`
	FailReason     string `json:"fail_reason"`
	CreateTime     int64  `gorm:"autoCreateTime" json:"create_time"`
	UpdateTime     int64  `gorm:"autoUpdateTime" json:"update_time"`
}

// VideoRecord mirrors the published "Video" table.
type VideoRecord struct {
	Id             uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId         string `gorm:"column:user_id;index" json:"user_id"`
	Title          string `gorm:"column:title" json:"title"`
	Description    string `gorm:"column:description" json:"description"`
	FirstImageUrl  string `gorm:"column:first_image_url" json:"first_image_url"`
	ResultVideoUrl string `gorm:"column:result_video_url" json:"result_video_url"`
	Duration       string `gorm:"column:duration" json:"duration"`
	UpdateTime     string `gorm:"column:update_time" json:"update_time"`
}

func (VideoRecord) TableName() string {
	return "Video"
}
