package app

import (
	"context"
	"fmt"
	"time"

	"orbit/internal/frameloop"
	"orbit/internal/platform"
)

type DriveOptions struct {
	FPS int
	// MaxFrames stops the loop after that many presented frames; zero runs
	// until the window closes or ctx is done.
	MaxFrames int
	// Wait paces frames. Nil waits on a ticker at FPS.
	Wait func(ctx context.Context) error
	// Title, when set, is shown with the current size and density after
	// every resize or density change.
	Title string
}

// Drive runs the render loop for a polled window: poll events, run the
// frames queued last tick, sync size and density, present.
func Drive(ctx context.Context, win platform.Window, rt *Runtime, opts DriveOptions) error {
	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}
	wait := opts.Wait
	if wait == nil {
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()
		wait = func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				return nil
			}
		}
	}

	presented := 0
	lastLog := time.Now()
	for {
		for _, ev := range win.PollEvents() {
			switch ev.Type {
			case platform.EventClose:
				rt.Logger.Info("window closed", "frames", presented)
				return nil
			case platform.EventResize, platform.EventDPIChanged:
				rt.Logger.Debug("host event", "type", ev.Type.String(), "width", ev.Width, "height", ev.Height, "scale", ev.Scale)
				if opts.Title != "" {
					w, h := win.Size()
					win.SetTitle(fmt.Sprintf("%s (%.0fx%.0f @%.2g)", opts.Title, w, h, win.Scale()))
				}
			}
		}

		rt.Frame()
		w, h := win.Size()
		rt.Sync(frameloop.Dimensions{Width: w, Height: h}, win.Scale())
		if err := win.Present(rt.Surface); err != nil {
			return fmt.Errorf("present frame: %w", err)
		}
		presented++
		if time.Since(lastLog) > time.Second {
			rt.Logger.Debug("heartbeat", "frames", presented)
			lastLog = time.Now()
		}
		if opts.MaxFrames > 0 && presented >= opts.MaxFrames {
			return nil
		}

		if err := wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
