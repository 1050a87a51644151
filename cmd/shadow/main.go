// shadow renders a GLSL fragment shader as an animated desktop background.
//
// It supports three modes:
//   - background: a borderless desktop-type window below all others (default)
//   - window: an ordinary resizable window
//   - root: frames are published as the X11 root window pixmap, so desktops
//     and compositors that read _XROOTPMAP_ID pick them up
//
// Run with --configure to pick a shader from a small launcher dialog.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/danielfvm/shadow/internal/daemon"
	"github.com/danielfvm/shadow/internal/gfx"
	"github.com/danielfvm/shadow/internal/launcher"
	"github.com/danielfvm/shadow/internal/options"
	"github.com/danielfvm/shadow/internal/render"
	"github.com/danielfvm/shadow/internal/x11"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	prog := filepath.Base(os.Args[0])
	log.SetPrefix("shadow")
	log.SetReportTimestamp(true)

	cfg, err := options.Parse(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		options.Usage(os.Stdout, prog)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n\n", prog, err)
		options.Usage(os.Stderr, prog)
		os.Exit(2)
	}
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if cfg.Configure {
		runLauncher(cfg)
		return
	}

	if daemon.ShouldDetach(cfg.Detach) {
		pid, err := daemon.Spawn(cfg.Args())
		if err != nil {
			log.Fatal("detaching", "err", err)
		}
		log.Info("running in the background", "pid", pid)
		return
	}

	if err := run(cfg); err != nil {
		log.Fatal("shadow stopped", "err", err)
	}
}

func run(cfg options.Config) error {
	fragment, err := gfx.LoadFragment(cfg.ShaderPath)
	if err != nil {
		return err
	}

	conn, err := x11.Dial("")
	if err != nil {
		return err
	}
	defer conn.Close()

	monitor, err := x11.Resolve(conn, cfg.Display)
	if err != nil {
		return err
	}
	log.Debug("output", "monitor", monitor)

	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "initializing GLFW")
	}
	defer glfw.Terminate()

	r := render.New(render.NewContext(cfg, conn, ""), monitor, fragment)
	if err := r.Initialize(); err != nil {
		return err
	}
	defer r.Destroy()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := &render.Loop{
		Targets: []render.Target{r},
		Clock:   render.NewClock(cfg.Render.Speed),
		Limiter: render.NewFrameLimiter(cfg.FrameLimit),
		Poll:    glfw.PollEvents,
		Stats:   cfg.Stats,
	}
	if interval := loop.Limiter.Interval(); interval > 0 {
		log.Debug("frame limit", "fps", cfg.FrameLimit, "interval", interval)
	}
	if err := loop.Run(ctx); err != nil {
		return err
	}
	log.Info("exiting")
	return nil
}

func runLauncher(cfg options.Config) {
	displays := []string{options.FullDisplay}
	if conn, err := x11.Dial(""); err != nil {
		log.Warn("monitor list unavailable", "err", err)
	} else {
		if monitors, err := conn.Monitors(); err != nil {
			log.Warn("monitor list unavailable", "err", err)
		} else {
			displays = launcher.DisplayChoices(monitors)
		}
		conn.Close()
	}

	launcher.Run(cfg, displays, func(chosen options.Config) error {
		pid, err := daemon.Spawn(chosen.Args())
		if err != nil {
			return err
		}
		log.Info("started renderer", "pid", pid, "shader", chosen.ShaderPath, "mode", chosen.Render.Mode)
		return nil
	})
}
