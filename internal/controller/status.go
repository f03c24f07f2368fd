package controller

import (
	"mergington-portal/internal/common/metrics"
	"mergington-portal/internal/models"
)

type pendingHide struct {
	timer      Timer
	generation uint64
}

// showStatus displays text on area and schedules its hide. A pending hide for
// the same area is cancelled, so the newest message stays up for the full
// delay. The generation check covers a timer that already fired and is
// waiting on c.mu.
func (c *Controller) showStatus(form string, area StatusArea, text string, kind models.StatusKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.pending[form]
	generation := uint64(1)
	if prev != nil {
		prev.timer.Stop()
		generation = prev.generation + 1
	}

	area.Show(text, kind)
	metrics.StatusMessages.WithLabelValues(form, string(kind)).Inc()

	entry := &pendingHide{generation: generation}
	entry.timer = c.scheduler.AfterFunc(c.config.HideDelay, func() {
		c.hideStatus(form, area, generation)
	})
	c.pending[form] = entry
}

func (c *Controller) hideStatus(form string, area StatusArea, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.pending[form]
	if current == nil || current.generation != generation {
		return
	}
	area.Hide()
}
