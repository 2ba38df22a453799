package mcts2048

// Config holds the tunable parameters of one search. The zero value is
// not usable; start from DefaultConfig and adjust with the fluent
// Set* methods.
type Config struct {
	iterations          int
	threads             int
	explorationConstant float64
	rolloutDepth         int
	seed                 int64
}

// DefaultConfig returns reasonable defaults: 500 iterations, a single
// speculative-expansion worker goroutine, exploration constant 1.41,
// rollout depth 10, and a fixed seed for reproducible searches.
func DefaultConfig() *Config {
	return &Config{
		iterations:          500,
		threads:             1,
		explorationConstant: 1.41,
		rolloutDepth:        10,
		seed:                1,
	}
}

// SetIterations sets how many select/expand/rollout/backpropagate
// cycles the main thread runs before returning the best action.
func (c *Config) SetIterations(n int) *Config {
	c.iterations = n
	return c
}

// SetThreads sets the number of speculative-expansion worker
// goroutines; values below 1 are raised to 1, so at least one worker
// always runs alongside the main thread. The main thread still expands
// synchronously whenever a boundary node's task has not yet been
// picked up by a worker.
func (c *Config) SetThreads(n int) *Config {
	if n < 1 {
		n = 1
	}
	c.threads = n
	return c
}

// SetExplorationConstant sets the UCT exploration coefficient
// multiplying the per-subtree (max_avg - min_avg) reward-scale term.
func (c *Config) SetExplorationConstant(explore float64) *Config {
	c.explorationConstant = explore
	return c
}

// SetRolloutDepth sets how many random moves a rollout plays past the
// leaf before falling back to the value estimator (0 means the
// estimator is consulted immediately unless the leaf is terminal).
func (c *Config) SetRolloutDepth(depth int) *Config {
	c.rolloutDepth = depth
	return c
}

// SetSeed fixes the random source driving both untried-action
// selection and random-tile spawning during search.
func (c *Config) SetSeed(seed int64) *Config {
	c.seed = seed
	return c
}
