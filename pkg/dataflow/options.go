package dataflow

// Option configures the behavior of pipeline stages.
type Option func(*config)

type config struct {
	workers int
}

func defaultConfig() *config {
	return &config{
		workers: 1,
	}
}

func newConfig(opts []Option) *config {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// WithWorkers sets the number of concurrent workers for a stage.
// Default is 1 (sequential).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}
