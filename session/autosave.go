package session

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Autosaver periodically saves dirty sessions.
type Autosaver struct {
	c *cron.Cron
}

// NewAutosaver schedules m.AutosaveDirty on schedule, a cron expression or a
// descriptor such as "@every 30s".
func NewAutosaver(m *Manager, schedule string) (*Autosaver, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if n := m.AutosaveDirty(ctx); n > 0 {
			logrus.WithField("saved", n).Info("Autosaved sessions")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid autosave schedule %q: %w", schedule, err)
	}
	return &Autosaver{c: c}, nil
}

func (a *Autosaver) Start() {
	a.c.Start()
}

// Stop halts the schedule and waits for a running save to finish or for
// ctx to end.
func (a *Autosaver) Stop(ctx context.Context) {
	done := a.c.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
