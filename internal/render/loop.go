package render

import (
	"context"
	"fmt"
	"time"
)

// Target is anything the loop renders into once per iteration.
type Target interface {
	Render(t float32) error
	ShouldClose() bool
	SetStatus(text string)
}

// Loop drives every target from a single clock until the context is
// cancelled or a window is closed.
type Loop struct {
	Targets []Target
	Clock   *Clock
	Limiter *FrameLimiter
	// Poll pumps window system events; nil skips it.
	Poll  func()
	Stats bool
}

// Run blocks until ctx is done or a target asks to close. A render error
// stops the loop and is returned.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		t := l.Clock.Time()
		for _, target := range l.Targets {
			if target.ShouldClose() {
				return nil
			}
			if err := target.Render(t); err != nil {
				return err
			}
		}
		if l.Poll != nil {
			l.Poll()
		}
		l.Limiter.Wait()

		if l.Stats {
			status := statusLine(l.Limiter.FPS(), l.Limiter.FrameTime(), t)
			for _, target := range l.Targets {
				target.SetStatus(status)
			}
		}
	}
}

func statusLine(fps float64, frame time.Duration, t float32) string {
	return fmt.Sprintf("%.0f fps  %.2f ms  t=%.1f", fps, float64(frame.Microseconds())/1000, t)
}
