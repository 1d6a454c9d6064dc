package generator

// Config drives the synthetic data generator.
type Config struct {
	NumClients      int
	NumTransactions int
	// IssueChance is the probability that a transaction carries a compliance issue.
	IssueChance float64
	// SolvedChance is the probability that an attached issue is already solved.
	SolvedChance float64
	MaxAmount    float64
	Seed         int64
}

// DefaultConfig returns baseline settings for a demo-sized dataset.
func DefaultConfig() Config {
	return Config{
		NumClients:      50,
		NumTransactions: 1000,
		IssueChance:     0.2,
		SolvedChance:    0.6,
		MaxAmount:       10000,
		Seed:            42,
	}
}
