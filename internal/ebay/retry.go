package ebay

import "time"

// RetryPolicy controls how search failures are retried: up to MaxAttempts
// total tries with exponential backoff between them.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Backoff returns the wait after a failed attempt (0-based): base * 2^attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	return delay
}
