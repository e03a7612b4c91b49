// Package appdirs decides where config, logs, run output and the database live.
package appdirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// PortableEnv keeps all state in a data dir next to the executable.
	PortableEnv = "FUNNYVIDEO_PORTABLE"
	// HomeEnv roots all state at the given directory, typically a mounted volume.
	HomeEnv = "FUNNYVIDEO_HOME"

	appName        = "FunnyVideo"
	configFileName = "config.toml"
)

type Paths struct {
	Portable   bool
	ConfigDir  string
	ConfigFile string
	LogDir     string
	OutputDir  string
	CacheDir   string
}

type resolveDeps struct {
	goos          string
	getenv        func(string) string
	executable    func() (string, error)
	userConfigDir func() (string, error)
	userCacheDir  func() (string, error)
}

func Resolve() (Paths, error) {
	return resolve(resolveDeps{
		goos:          runtime.GOOS,
		getenv:        os.Getenv,
		executable:    os.Executable,
		userConfigDir: os.UserConfigDir,
		userCacheDir:  os.UserCacheDir,
	})
}

// resolve picks the first layout that applies: portable, explicit home, the
// per-user dirs on desktop platforms, then the working-directory layout.
func resolve(d resolveDeps) (Paths, error) {
	if d.getenv == nil {
		d.getenv = os.Getenv
	}

	if isTruthy(d.getenv(PortableEnv)) {
		if d.executable == nil {
			d.executable = os.Executable
		}
		exe, err := d.executable()
		if err != nil {
			return Paths{}, err
		}
		paths := rootedAt(filepath.Join(filepath.Dir(exe), "data"))
		paths.Portable = true
		return paths, nil
	}

	if home := strings.TrimSpace(d.getenv(HomeEnv)); home != "" {
		return rootedAt(filepath.Clean(home)), nil
	}

	goos := d.goos
	if goos == "" {
		goos = runtime.GOOS
	}
	if goos == "windows" || goos == "darwin" {
		return userDirs(d)
	}
	return workingDirPaths(), nil
}

func rootedAt(dataDir string) Paths {
	configDir := filepath.Join(dataDir, "config")
	return Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, configFileName),
		LogDir:     filepath.Join(dataDir, "logs"),
		OutputDir:  filepath.Join(dataDir, "output"),
		CacheDir:   filepath.Join(dataDir, "cache"),
	}
}

// userDirs keeps config under the user config root and everything a run
// writes under the user cache root.
func userDirs(d resolveDeps) (Paths, error) {
	if d.userConfigDir == nil {
		d.userConfigDir = os.UserConfigDir
	}
	if d.userCacheDir == nil {
		d.userCacheDir = os.UserCacheDir
	}

	configRoot, err := nonEmptyDir(d.userConfigDir, "user config dir")
	if err != nil {
		return Paths{}, err
	}
	cacheRoot, err := nonEmptyDir(d.userCacheDir, "user cache dir")
	if err != nil {
		return Paths{}, err
	}

	configDir := filepath.Join(configRoot, appName)
	cacheBase := filepath.Join(cacheRoot, appName)
	return Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, configFileName),
		LogDir:     filepath.Join(cacheBase, "logs"),
		OutputDir:  filepath.Join(cacheBase, "output"),
		CacheDir:   filepath.Join(cacheBase, "cache"),
	}, nil
}

func nonEmptyDir(lookup func() (string, error), what string) (string, error) {
	dir, err := lookup()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(dir) == "" {
		return "", errors.New(what + " is empty")
	}
	return dir, nil
}

// workingDirPaths is the server layout: everything relative to the working
// directory.
func workingDirPaths() Paths {
	return Paths{
		ConfigDir:  "config",
		ConfigFile: filepath.Join("config", configFileName),
		LogDir:     ".",
		OutputDir:  ".",
		CacheDir:   "cache",
	}
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
