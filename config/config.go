package config

import (
	"errors"
	"fmt"
	"funny-video/internal/appdirs"
	"funny-video/log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

type App struct {
	Proxy        string   `toml:"proxy"`
	ClipDuration float64  `toml:"clip_duration"`
	BgmPath      string   `toml:"bgm_path"`
	Parallelism  int      `toml:"parallelism"`
	ParsedProxy  *url.URL `toml:"-"`
}

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type Ffmpeg struct {
	Path           string `toml:"path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type Restyle struct {
	Provider   string `toml:"provider"`
	BaseUrl    string `toml:"base_url"`
	ApiKey     string `toml:"api_key"`
	Model      string `toml:"model"`
	Prompt     string `toml:"prompt"`
	MaxRetries int    `toml:"max_retries"`
}

type Storage struct {
	Provider        string `toml:"provider"`
	Endpoint        string `toml:"endpoint"`
	Region          string `toml:"region"`
	AccessKeyId     string `toml:"access_key_id"`
	AccessKeySecret string `toml:"access_key_secret"`
	Bucket          string `toml:"bucket"`
	UseSSL          bool   `toml:"use_ssl"`
}

type Database struct {
	Driver string `toml:"driver"`
	Dsn    string `toml:"dsn"`
}

type Queue struct {
	Enabled       bool   `toml:"enabled"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
	// RunTimeoutMinutes caps one pipeline run in either backend.
	RunTimeoutMinutes int `toml:"run_timeout_minutes"`
}

type Config struct {
	App      App      `toml:"app"`
	Server   Server   `toml:"server"`
	Ffmpeg   Ffmpeg   `toml:"ffmpeg"`
	Restyle  Restyle  `toml:"restyle"`
	Storage  Storage  `toml:"storage"`
	Database Database `toml:"database"`
	Queue    Queue    `toml:"queue"`
}

const DefaultRestylePrompt = "生成抖音短视频适用的‘灵魂画手’风格线框图：基于提供的原图内容，用模拟人手绘制的自然线条呈现，线条粗细有轻微不规则变化，边缘带极淡笔触纹理（非机械平滑线条）；优先保留原图主体轮廓和关键特征，背景【纯白色】适当简化不抢镜；线条颜色用高对比度的黑色或深灰色，可在主体边缘加 1-2 处小涂鸦元素（如小爱心、小星星）增加趣味感；整体画风轻松、不刻板，符合抖音短平快的视觉传播节奏，适合直接作为短视频画面或转场素材。"

var Conf = defaultConfig()

var resolveConfigPath = ResolveConfigPath

func defaultConfig() Config {
	return Config{
		App: App{
			ClipDuration: 3.0,
			BgmPath:      "./bgm.mp3",
			Parallelism:  4,
		},
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Ffmpeg: Ffmpeg{
			TimeoutSeconds: 300,
		},
		Restyle: Restyle{
			Provider:   "dashscope",
			BaseUrl:    "https://dashscope.aliyuncs.com/api/v1",
			Model:      "qwen-image-edit-plus",
			Prompt:     DefaultRestylePrompt,
			MaxRetries: 3,
		},
		Storage: Storage{
			Provider: "local",
			Bucket:   "videos",
		},
		Database: Database{
			Driver: "sqlite",
		},
		Queue: Queue{
			RedisAddr:         "127.0.0.1:6379",
			Concurrency:       2,
			RunTimeoutMinutes: 60,
		},
	}
}

func ResolveConfigPath() (string, error) {
	paths, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

// LoadOrCreateConfig loads the config file, writing defaults first when it does
// not exist. created reports whether a new file was written.
func LoadOrCreateConfig() (created bool, err error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, fmt.Errorf("resolve config path: %w", err)
	}

	if _, statErr := os.Stat(configPath); errors.Is(statErr, os.ErrNotExist) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, err
		}
		log.GetLogger().Info("未找到配置文件，已生成默认配置", zap.String("path", configPath))
		return true, nil
	} else if statErr != nil {
		return false, fmt.Errorf("stat config file: %w", statErr)
	}

	loaded := defaultConfig()
	if _, err = toml.DecodeFile(configPath, &loaded); err != nil {
		return false, fmt.Errorf("decode config file %s: %w", configPath, err)
	}
	Conf = loaded
	log.GetLogger().Info("已加载配置文件", zap.String("path", configPath))
	return false, nil
}

// LoadConfig reports whether an existing config file was loaded. A freshly
// written default file and an unreadable one both return false, leaving Conf
// at its defaults.
func LoadConfig() bool {
	created, err := LoadOrCreateConfig()
	if err != nil {
		log.GetLogger().Error("加载配置失败，使用默认配置", zap.Error(err))
		Conf = defaultConfig()
		return false
	}
	return !created
}

func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer file.Close()

	if err = toml.NewEncoder(file).Encode(Conf); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// CheckConfig validates the loaded values and fills derived fields.
func CheckConfig() error {
	if Conf.App.Proxy != "" {
		parsed, err := url.Parse(Conf.App.Proxy)
		if err != nil {
			return fmt.Errorf("invalid proxy %q: %w", Conf.App.Proxy, err)
		}
		Conf.App.ParsedProxy = parsed
	}
	if Conf.App.ClipDuration <= 0 {
		Conf.App.ClipDuration = 3.0
	}
	if Conf.App.Parallelism <= 0 {
		Conf.App.Parallelism = 1
	}
	if Conf.Ffmpeg.TimeoutSeconds <= 0 {
		Conf.Ffmpeg.TimeoutSeconds = 300
	}
	if Conf.Restyle.MaxRetries < 0 {
		Conf.Restyle.MaxRetries = 0
	}
	if strings.TrimSpace(Conf.Restyle.Prompt) == "" {
		Conf.Restyle.Prompt = DefaultRestylePrompt
	}

	switch Conf.Restyle.Provider {
	case "dashscope", "openai":
		if Conf.Restyle.ApiKey == "" {
			return fmt.Errorf("restyle provider %s requires api_key", Conf.Restyle.Provider)
		}
	case "none":
	default:
		return fmt.Errorf("unsupported restyle provider %q", Conf.Restyle.Provider)
	}

	switch Conf.Storage.Provider {
	case "local":
	case "minio", "oss":
		if Conf.Storage.Bucket == "" || Conf.Storage.AccessKeyId == "" || Conf.Storage.AccessKeySecret == "" {
			return fmt.Errorf("storage provider %s requires bucket and credentials", Conf.Storage.Provider)
		}
		if Conf.Storage.Provider == "minio" && Conf.Storage.Endpoint == "" {
			return errors.New("storage provider minio requires endpoint")
		}
		if Conf.Storage.Provider == "oss" && Conf.Storage.Region == "" {
			return errors.New("storage provider oss requires region")
		}
	default:
		return fmt.Errorf("unsupported storage provider %q", Conf.Storage.Provider)
	}

	switch Conf.Database.Driver {
	case "sqlite":
	case "postgres":
		if Conf.Database.Dsn == "" {
			return errors.New("database driver postgres requires dsn")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", Conf.Database.Driver)
	}

	if Conf.Queue.Enabled && Conf.Queue.RedisAddr == "" {
		return errors.New("queue enabled but redis_addr is empty")
	}
	if Conf.Queue.Concurrency <= 0 {
		Conf.Queue.Concurrency = 1
	}
	if Conf.Queue.RunTimeoutMinutes <= 0 {
		Conf.Queue.RunTimeoutMinutes = 60
	}
	return nil
}
