package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"funny-video/config"
	"funny-video/internal/appdirs"
	"funny-video/internal/deps"
	"funny-video/log"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type cliOptions struct {
	Input       string
	Moments     string
	UserId      string
	Title       string
	Description string
	NoRestyle   bool
	Version     bool
	Diagnose    bool
}

func parseFlags(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	flags := flag.NewFlagSet("reel", flag.ContinueOnError)
	flags.SetOutput(stderr)

	flags.StringVar(&opts.Input, "input", "", "source video file")
	flags.StringVar(&opts.Moments, "moments", "", "comma separated seconds, e.g. 2,5,8")
	flags.StringVar(&opts.UserId, "user", "local", "owner recorded with the published reel")
	flags.StringVar(&opts.Title, "title", "", "reel title")
	flags.StringVar(&opts.Description, "description", "", "reel description")
	flags.BoolVar(&opts.NoRestyle, "no-restyle", false, "skip the restyle service, the reel keeps only source segments")
	flags.BoolVar(&opts.Version, "version", false, "print version information")
	flags.BoolVar(&opts.Diagnose, "diagnose", false, "print runtime diagnostics")

	if err := flags.Parse(args); err != nil {
		return opts, err
	}
	if opts.Version || opts.Diagnose {
		return opts, nil
	}
	if strings.TrimSpace(opts.Input) == "" {
		return opts, errors.New("-input is required")
	}
	if strings.TrimSpace(opts.Moments) == "" {
		return opts, errors.New("-moments is required")
	}
	return opts, nil
}

func printVersion() {
	fmt.Printf("version: %s\ncommit: %s\ndate: %s\n", version, commit, date)
}

func printDiagnose() {
	fmt.Printf("runtime: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("version: %s\n", version)

	if exePath, err := os.Executable(); err == nil {
		fmt.Printf("executable: %s\n", exePath)
	} else {
		fmt.Printf("executable: <error: %v>\n", err)
	}

	if paths, err := appdirs.Resolve(); err == nil {
		fmt.Printf("path.config: %s\n", paths.ConfigFile)
		fmt.Printf("path.runs: %s\n", paths.RunRoot())
		fmt.Printf("path.uploads: %s\n", paths.UploadRoot())
		fmt.Printf("path.db: %s\n", paths.DBPath())
	} else {
		fmt.Printf("path: <error: %v>\n", err)
	}
	if logDir, err := log.ResolveLogDir(); err == nil {
		fmt.Printf("path.effective_log_dir: %s\n", logDir)
	} else {
		fmt.Printf("path.effective_log_dir: <error: %v>\n", err)
	}

	fmt.Println(deps.FormatReport(deps.Diagnose(config.Conf.App.BgmPath)))
}
