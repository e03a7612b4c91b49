package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"funny-video/config"
	"funny-video/internal/appcore"
	"funny-video/internal/bootstrap"
	"funny-video/internal/service"
	"funny-video/internal/types"
	"funny-video/log"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if opts.Version {
		printVersion()
		return 0
	}
	if opts.Diagnose {
		printDiagnose()
		return 0
	}

	log.InitLogger()
	defer log.GetLogger().Sync()

	if _, err = config.LoadOrCreateConfig(); err != nil {
		log.GetLogger().Error("加载配置失败", zap.Error(err))
		return 1
	}
	if opts.NoRestyle {
		config.Conf.Restyle.Provider = "none"
	}
	if err = config.CheckConfig(); err != nil {
		log.GetLogger().Error("配置校验失败", zap.Error(err))
		return 1
	}

	if err = bootstrap.Prepare(); err != nil {
		log.GetLogger().Error("运行环境准备失败", zap.Error(err))
		return 1
	}

	svc, err := service.NewService()
	if err != nil {
		log.GetLogger().Error("初始化服务失败", zap.Error(err))
		return 1
	}

	sub, err := svc.PrepareSubmission(types.Submission{
		UserId:      opts.UserId,
		Title:       opts.Title,
		Description: opts.Description,
		SourcePath:  opts.Input,
		Moments:     opts.Moments,
	})
	if err != nil {
		log.GetLogger().Error("提交任务失败", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := svc.RunPipeline(ctx, sub)
	if err != nil {
		log.GetLogger().Error("任务执行失败", zap.Error(err))
		return 1
	}
	printRun(result)
	if result.Status != appcore.RunStatusCompleted {
		return 1
	}
	return 0
}

func printRun(run *types.Run) {
	fmt.Printf("run: %s\nstatus: %s\n", run.RunId, run.Status)
	for _, o := range run.Outcomes {
		fmt.Printf("  %s\n", o)
		for _, w := range o.Warnings {
			fmt.Printf("    warning: %s\n", w)
		}
	}
	if run.Merge != nil {
		fmt.Printf("merged: %s\n", run.Merge.MergedPath)
	}
	if run.Publish != nil && run.Publish.ResultVideoUrl != "" {
		fmt.Printf("published: %s\n", run.Publish.ResultVideoUrl)
	}
}
