package odoo

// Config holds the connection settings of the remote backend.
type Config struct {
	URL        string
	Database   string
	TimeoutMs  int
	MaxRetries int

	// RatePerSec paces outgoing calls; 0 disables pacing.
	RatePerSec float64
	Burst      int
}

// DefaultConfig returns a Config with sensible defaults and no endpoint.
func DefaultConfig() Config {
	return Config{
		TimeoutMs:  15000,
		MaxRetries: 1,
		RatePerSec: 10,
		Burst:      5,
	}
}
