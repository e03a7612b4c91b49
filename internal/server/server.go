package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"funny-video/config"
	"funny-video/internal/handler"
	"funny-video/internal/queue"
	"funny-video/internal/router"
	"funny-video/internal/service"
	"funny-video/internal/storage"
	"funny-video/internal/taskrunner"
	"funny-video/internal/types"
	"funny-video/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartBackend serves the HTTP API until SIGINT/SIGTERM. Runs go to the asynq
// worker when [queue] is enabled, otherwise to the in-process task runner.
func StartBackend() error {
	svc, err := service.NewService()
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}

	var submitter types.RunSubmitter
	var shutdown func()
	if config.Conf.Queue.Enabled {
		q := queue.NewQueue(queue.ConfigFromConf())
		go func() {
			if err := queue.StartWorker(q, svc); err != nil {
				log.GetLogger().Error("队列worker退出", zap.Error(err))
			}
		}()
		submitter = q
		shutdown = func() { _ = q.Close() }
	} else {
		runner := taskrunner.New(svc, taskrunner.Config{
			Concurrency: config.Conf.Queue.Concurrency,
			RunTimeout:  time.Duration(config.Conf.Queue.RunTimeoutMinutes) * time.Minute,
		})
		submitter = runner
		shutdown = runner.Close
	}
	defer shutdown()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()
	router.SetupRouter(engine, handler.NewHandler(svc, storage.NewRunRepo(storage.DB), submitter))

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	srv := &http.Server{Addr: addr, Handler: engine}

	errCh := make(chan error, 1)
	go func() {
		log.GetLogger().Info("服务启动", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err = <-errCh:
		return err
	case s := <-sig:
		log.GetLogger().Info("收到退出信号，正在关闭服务", zap.String("signal", s.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
