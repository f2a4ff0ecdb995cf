package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orbit/internal/app"
	"orbit/internal/config"
	"orbit/internal/frameloop"
	"orbit/internal/platform"
	"orbit/internal/platform/fbdev"
	"orbit/internal/platform/headless"

	"github.com/gogpu/gg"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "orbit: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "YAML or TOML config file")
	host := flag.String("host", "", "host: window, framebuffer or headless")
	loop := flag.Bool("loop", true, "keep requesting frames")
	densityCap := flag.Float64("density-cap", 0, "upper bound on the device pixel ratio")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	frames := flag.Int("frames", 0, "headless: number of frames to render")
	out := flag.String("out", "", "headless: directory for PNG frames")
	flag.Parse()

	cfg, missing, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["host"] {
		cfg.Host = *host
	}
	if set["loop"] {
		cfg.Loop = *loop
	}
	if set["density-cap"] {
		cfg.DensityCap = *densityCap
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}
	if set["frames"] {
		cfg.Headless.Frames = *frames
	}
	if set["out"] {
		cfg.Headless.OutDir = *out
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	gg.SetLogger(logger)
	if missing {
		logger.Warn("config file not found, using defaults", "path", *configPath)
	}
	if cfg.Renderer.SDF {
		if err := gg.RegisterAccelerator(&gg.SDFAccelerator{}); err != nil {
			logger.Warn("sdf accelerator unavailable", "error", err)
		}
	}

	opts := app.RuntimeOptions{
		Loop:       cfg.Loop,
		DensityCap: cfg.DensityCap,
		Controls:   cfg.Controls,
		Logger:     logger,
	}
	logger.Info("starting", "host", cfg.Host, "loop", cfg.Loop, "density_cap", cfg.DensityCap)

	switch cfg.Host {
	case config.HostWindow:
		rt := app.NewRuntime(opts)
		return app.New(rt, app.WindowOptions{
			Title:     cfg.Window.Title,
			Width:     cfg.Window.Width,
			Height:    cfg.Window.Height,
			MinWidth:  cfg.Window.MinWidth,
			MinHeight: cfg.Window.MinHeight,
			TPS:       cfg.Window.TPS,
		}).Run()
	case config.HostFramebuffer:
		b := fbdev.New(cfg.Framebuffer.Device, cfg.Framebuffer.Scale)
		b.Logger = logger
		win, err := b.CreateWindow(platform.WindowConfig{Title: cfg.Window.Title})
		if err != nil {
			return err
		}
		defer win.Close()
		rt := app.NewRuntime(opts)
		defer rt.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.Drive(ctx, win, rt, app.DriveOptions{FPS: cfg.Framebuffer.FPS, Title: cfg.Window.Title})
	case config.HostHeadless:
		return runHeadless(cfg, opts)
	}
	return errors.New("no host selected")
}

// loadConfig reads path over the defaults. A missing file is reported
// through missing instead of an error.
func loadConfig(path string) (cfg config.Config, missing bool, err error) {
	cfg, err = config.Load(path)
	if errors.Is(err, config.ErrNotFound) {
		return cfg, true, nil
	}
	return cfg, false, err
}

// runHeadless renders on a simulated clock so output frames are
// reproducible.
func runHeadless(cfg config.Config, opts app.RuntimeOptions) error {
	clock := frameloop.NewManualClock(time.Unix(0, 0))
	opts.Clock = clock
	rt := app.NewRuntime(opts)
	defer rt.Close()

	b := headless.New()
	b.Scale = cfg.Headless.Scale
	b.OutDir = cfg.Headless.OutDir
	win, err := b.CreateWindow(platform.WindowConfig{
		Title:    cfg.Window.Title,
		WidthPx:  cfg.Window.Width,
		HeightPx: cfg.Window.Height,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	fps := cfg.Headless.FPS
	if fps <= 0 {
		fps = 60
	}
	step := time.Second / time.Duration(fps)
	frames := cfg.Headless.Frames
	if frames <= 0 {
		frames = 1
	}
	err = app.Drive(context.Background(), win, rt, app.DriveOptions{
		FPS:       fps,
		MaxFrames: frames,
		Wait: func(context.Context) error {
			clock.Advance(step)
			return nil
		},
		Title: cfg.Window.Title,
	})
	if err != nil {
		return err
	}
	rt.Logger.Info("headless run finished", "frames", frames, "out_dir", cfg.Headless.OutDir)
	return nil
}
