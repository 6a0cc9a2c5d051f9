package app

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Refresher fires a callback on a cron schedule while the dashboard is open.
// The callback only signals the UI loop; the session controller stays the
// single writer of session state.
type Refresher struct {
	cron *cron.Cron
}

func NewRefresher() *Refresher {
	return &Refresher{cron: cron.New()}
}

// Start validates the schedule and begins firing fn. Standard five-field
// cron expressions and descriptors like @hourly are accepted.
func (r *Refresher) Start(schedule string, fn func()) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	if _, err := r.cron.AddFunc(schedule, fn); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *Refresher) Stop() {
	r.cron.Stop()
}
