package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseCron parses a five-field cron expression.
func ParseCron(expr string) (cron.Schedule, error) {
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid cron expression %q: %w", contract.ErrInvalidConfiguration, expr, err)
	}
	return sched, nil
}

// NextCron returns the first activation of expr after from.
func NextCron(expr string, from time.Time) (time.Time, error) {
	sched, err := ParseCron(expr)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Cron is a cron expression that can be replaced while a loop is running.
type Cron struct {
	mu    sync.RWMutex
	expr  string
	sched cron.Schedule
}

// NewCron parses expr into a Cron.
func NewCron(expr string) (*Cron, error) {
	c := &Cron{}
	if err := c.Set(expr); err != nil {
		return nil, err
	}
	return c, nil
}

// Set replaces the expression. The old one stays in effect on error.
func (c *Cron) Set(expr string) error {
	sched, err := ParseCron(expr)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expr = expr
	c.sched = sched
	return nil
}

// Expr returns the current expression.
func (c *Cron) Expr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expr
}

// Next returns the next activation after from.
func (c *Cron) Next(from time.Time) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sched.Next(from)
}

// Loop checks the schedule every tick and calls run once per activation
// that fell between two checks. It returns when ctx is done.
func (c *Cron) Loop(ctx context.Context, tick time.Duration, now func() time.Time, run func(context.Context)) error {
	if now == nil {
		now = time.Now
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			current := now()
			if !c.Next(last).After(current) {
				run(ctx)
			}
			last = current
		}
	}
}
