package service

import (
	"context"
	"fmt"
	"time"

	"funny-video/config"
	"funny-video/internal/appdirs"
	"funny-video/internal/storage"
	"funny-video/internal/types"
	"funny-video/log"
	"funny-video/pkg/dashscope"
	"funny-video/pkg/ffmpeg"
	"funny-video/pkg/objectstore"
	"funny-video/pkg/openai"

	"go.uber.org/zap"
)

type Options struct {
	ClipDuration   float64
	BgmPath        string
	Parallelism    int
	Prompt         string
	UploadAttempts int
}

type Service struct {
	Runner   types.CommandRunner
	Restyler types.Restyler
	Uploader types.ObjectUploader
	Videos   types.VideoRepository
	Runs     types.RunStore
	Options  Options
}

func OptionsFromConfig() Options {
	return Options{
		ClipDuration:   config.Conf.App.ClipDuration,
		BgmPath:        config.Conf.App.BgmPath,
		Parallelism:    config.Conf.App.Parallelism,
		Prompt:         config.Conf.Restyle.Prompt,
		UploadAttempts: defaultRetryAttempts,
	}
}

// NewService wires the collaborators selected in config. storage.InitDB must
// have run when the sqlite driver is used.
func NewService() (*Service, error) {
	s := &Service{
		Runner:  ffmpeg.NewRunner(time.Duration(config.Conf.Ffmpeg.TimeoutSeconds) * time.Second),
		Options: OptionsFromConfig(),
	}

	switch config.Conf.Restyle.Provider {
	case "dashscope":
		s.Restyler = dashscope.NewClient(config.Conf.Restyle.BaseUrl, config.Conf.Restyle.ApiKey, config.Conf.Restyle.Model, config.Conf.App.Proxy, config.Conf.Restyle.MaxRetries)
	case "openai":
		s.Restyler = openai.NewClient(config.Conf.Restyle.BaseUrl, config.Conf.Restyle.ApiKey, config.Conf.Restyle.Model, config.Conf.App.Proxy)
	case "none":
		log.GetLogger().Warn("未启用图片风格化，趣味片段将被跳过")
	}
	log.GetLogger().Info("当前选择的风格化服务", zap.String("provider", config.Conf.Restyle.Provider))

	uploader, err := newUploader()
	if err != nil {
		return nil, err
	}
	s.Uploader = uploader
	log.GetLogger().Info("当前选择的对象存储", zap.String("provider", config.Conf.Storage.Provider))

	switch config.Conf.Database.Driver {
	case "postgres":
		repo, err := storage.NewPgVideoRepo(context.Background(), config.Conf.Database.Dsn)
		if err != nil {
			return nil, err
		}
		s.Videos = repo
	default:
		if storage.DB == nil {
			return nil, fmt.Errorf("database not initialized")
		}
		s.Videos = storage.NewVideoRepo(storage.DB)
	}
	if storage.DB != nil {
		s.Runs = storage.NewRunRepo(storage.DB)
	}
	return s, nil
}

func newUploader() (types.ObjectUploader, error) {
	st := config.Conf.Storage
	switch st.Provider {
	case "minio":
		return objectstore.NewMinioStore(st.Endpoint, st.AccessKeyId, st.AccessKeySecret, st.Bucket, st.UseSSL)
	case "oss":
		return objectstore.NewOssStore(st.Region, st.Endpoint, st.AccessKeyId, st.AccessKeySecret, st.Bucket), nil
	default:
		dirs, err := appdirs.Resolve()
		if err != nil {
			return nil, err
		}
		return objectstore.NewLocalStore(dirs.PublishedRoot()), nil
	}
}
