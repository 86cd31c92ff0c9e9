package app

// DefaultTimeLimit is the per-question budget in ticks (seconds when driven by the service).
const DefaultTimeLimit = 30

// Countdown is a per-question timer. It is advanced explicitly by Tick so the
// owner decides what one unit of time is.
type Countdown struct {
	budget    int
	remaining int
	active    bool
	onExpire  func()
}

// NewCountdown returns an inactive countdown that calls onExpire once per armed run.
func NewCountdown(budget int, onExpire func()) *Countdown {
	if budget < 0 {
		budget = 0
	}
	return &Countdown{budget: budget, remaining: budget, onExpire: onExpire}
}

// Arm activates the countdown with the given duration.
func (c *Countdown) Arm(duration int) {
	if duration < 0 {
		duration = 0
	}
	c.remaining = duration
	c.active = true
}

// Reset re-arms the countdown with its full budget.
func (c *Countdown) Reset() {
	c.Arm(c.budget)
}

// Cancel deactivates the countdown. A cancelled countdown never expires.
func (c *Countdown) Cancel() {
	c.active = false
}

// Tick consumes one unit of time and reports whether this tick expired the countdown.
func (c *Countdown) Tick() bool {
	if !c.active {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining > 0 {
		return false
	}
	c.active = false
	if c.onExpire != nil {
		c.onExpire()
	}
	return true
}

func (c *Countdown) Remaining() int { return c.remaining }
func (c *Countdown) Active() bool   { return c.active }
func (c *Countdown) Budget() int    { return c.budget }
