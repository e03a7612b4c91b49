package main

import (
	"os"

	"funny-video/config"
	"funny-video/internal/bootstrap"
	"funny-video/internal/server"
	"funny-video/log"

	"go.uber.org/zap"
)

func main() {
	log.InitLogger()
	defer log.GetLogger().Sync()

	var err error
	if !config.LoadConfig() {
		log.GetLogger().Info("请检查配置文件后重新启动")
		return
	}

	if err = config.CheckConfig(); err != nil {
		log.GetLogger().Error("加载配置失败", zap.Error(err))
		return
	}

	if err = bootstrap.Prepare(); err != nil {
		log.GetLogger().Error("运行环境准备失败", zap.Error(err))
		return
	}
	bootstrap.RecoverStaleRuns()

	if err = server.StartBackend(); err != nil {
		log.GetLogger().Error("后端服务启动失败", zap.Error(err))
		os.Exit(1)
	}
}
