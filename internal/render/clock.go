package render

import (
	"time"

	"github.com/charmbracelet/log"
)

// Clock turns monotonic wall time into shader time.
type Clock struct {
	start time.Time
	speed float64
	now   func() time.Time
}

// NewClock starts a clock running at speed. Negative speeds run time
// backwards from zero.
func NewClock(speed float64) *Clock {
	return newClock(speed, time.Now)
}

func newClock(speed float64, now func() time.Time) *Clock {
	return &Clock{start: now(), speed: speed, now: now}
}

// Time returns elapsed seconds scaled by speed.
func (c *Clock) Time() float32 {
	return float32(c.now().Sub(c.start).Seconds() * c.speed)
}

// FrameLimiter paces the main loop to a target frame rate and keeps frame
// statistics. A zero rate leaves the loop unbounded.
type FrameLimiter struct {
	interval time.Duration
	now      func() time.Time
	sleep    func(time.Duration)

	last        time.Time
	windowStart time.Time
	frames      int
	fps         float64
	frameTime   time.Duration
}

// NewFrameLimiter returns a limiter for fps frames per second.
func NewFrameLimiter(fps int) *FrameLimiter {
	return newFrameLimiter(fps, time.Now, time.Sleep)
}

func newFrameLimiter(fps int, now func() time.Time, sleep func(time.Duration)) *FrameLimiter {
	l := &FrameLimiter{now: now, sleep: sleep}
	if fps > 0 {
		l.interval = time.Second / time.Duration(fps)
	}
	return l
}

// Interval returns the target frame interval, 0 when unbounded.
func (l *FrameLimiter) Interval() time.Duration {
	return l.interval
}

// Wait is called once per frame. It sleeps whatever remains of the frame
// interval since the previous call.
func (l *FrameLimiter) Wait() {
	now := l.now()
	if l.last.IsZero() {
		l.last, l.windowStart = now, now
		return
	}

	l.frameTime = now.Sub(l.last)
	if rest := l.interval - l.frameTime; l.interval > 0 && rest > 0 {
		l.sleep(rest)
		now = l.now()
	}
	l.last = now

	l.frames++
	if elapsed := now.Sub(l.windowStart); elapsed >= time.Second {
		l.fps = float64(l.frames) / elapsed.Seconds()
		log.Debug("frame rate", "fps", int(l.fps+0.5), "frame", l.frameTime.Round(time.Microsecond))
		l.frames = 0
		l.windowStart = now
	}
}

// FPS returns the frame rate measured over the last full second.
func (l *FrameLimiter) FPS() float64 {
	return l.fps
}

// FrameTime returns the work time of the previous frame, excluding sleep.
func (l *FrameLimiter) FrameTime() time.Duration {
	return l.frameTime
}
