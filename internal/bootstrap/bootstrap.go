// Package bootstrap prepares the process-wide state both binaries need once
// config is loaded: the ffmpeg binary, the dependency check and the database.
package bootstrap

import (
	"fmt"

	"funny-video/config"
	"funny-video/internal/deps"
	"funny-video/internal/storage"
	"funny-video/log"

	"go.uber.org/zap"
)

var (
	checkDependency = deps.CheckDependency
	initDB          = storage.InitDB
)

// Prepare must run after config.CheckConfig.
func Prepare() error {
	if config.Conf.Ffmpeg.Path != "" {
		storage.FfmpegPath = config.Conf.Ffmpeg.Path
	}
	checks, err := checkDependency(config.Conf.App.BgmPath)
	if err != nil {
		return fmt.Errorf("dependency check: %w", err)
	}
	for _, c := range checks {
		if !c.OK() {
			log.GetLogger().Warn("可选依赖不可用", zap.String("name", c.Name), zap.String("hint", c.Hint))
		}
	}
	if err = initDB(); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	return nil
}

// RecoverStaleRuns fails runs a previous process left pending or running.
func RecoverStaleRuns() {
	count, err := storage.NewRunRepo(storage.DB).MarkStaleRuns()
	switch {
	case err != nil:
		log.GetLogger().Warn("标记中断任务失败", zap.Error(err))
	case count > 0:
		log.GetLogger().Info("已将中断的任务标记为失败", zap.Int64("count", count))
	}
}
