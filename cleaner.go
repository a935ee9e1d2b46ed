package fetchcache

import "time"

// StartCleaner starts the background cleaner, which calls Clean every
// interval. If interval is <= 0 the Config.CleanInterval is used instead; if
// that is also <= 0 nothing is started.
//
// Starting while a cleaner is already running restarts it with the new
// interval.
func (c *Cache[V]) StartCleaner(interval time.Duration) {
	if interval <= 0 {
		interval = c.cfg.CleanInterval
	}

	c.cleanerMu.Lock()
	defer c.cleanerMu.Unlock()

	c.stopCleanerLocked()

	if interval <= 0 {
		return
	}

	stop := make(chan struct{})
	c.cleanerStop = stop

	go c.cleanLoop(interval, stop)
}

// StopCleaner stops the background cleaner. Stopping when no cleaner is
// running is a no-op. Committed entries are not affected.
func (c *Cache[V]) StopCleaner() {
	c.cleanerMu.Lock()
	c.stopCleanerLocked()
	c.cleanerMu.Unlock()
}

func (c *Cache[V]) stopCleanerLocked() {
	if c.cleanerStop != nil {
		close(c.cleanerStop)
		c.cleanerStop = nil
	}
}

// cleanLoop sweeps expired entries until stopped. Clean is called
// synchronously from the loop, so sweeps never overlap.
func (c *Cache[V]) cleanLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.Clean()
		}
	}
}
