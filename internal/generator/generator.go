package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/txinsights/internal/domain"
)

type client struct {
	fullName string
	age      int
}

// Generator produces synthetic transaction records in the loader's format.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumClients < 2 {
		cfg.NumClients = defaults.NumClients
	}
	if cfg.NumTransactions <= 0 {
		cfg.NumTransactions = defaults.NumTransactions
	}
	if cfg.IssueChance < 0 || cfg.IssueChance > 1 {
		cfg.IssueChance = defaults.IssueChance
	}
	if cfg.SolvedChance < 0 || cfg.SolvedChance > 1 {
		cfg.SolvedChance = defaults.SolvedChance
	}
	if cfg.MaxAmount <= 0 {
		cfg.MaxAmount = defaults.MaxAmount
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
	}
}

// Config returns the effective configuration after defaults were applied.
func (g *Generator) Config() Config {
	return g.cfg
}

// Generate synthesises transactions. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) ([]domain.Transaction, error) {
	clients := g.clients()
	txs := make([]domain.Transaction, g.cfg.NumTransactions)
	nextIssueID := 1000 + g.rand.Intn(9000)

	for i := range txs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		senderIdx := g.rand.Intn(len(clients))
		beneficiaryIdx := g.rand.Intn(len(clients))
		if senderIdx == beneficiaryIdx {
			beneficiaryIdx = (beneficiaryIdx + 1) % len(clients)
		}
		sender, beneficiary := clients[senderIdx], clients[beneficiaryIdx]

		tx := domain.Transaction{
			ID:                  int64(1_000_000 + g.rand.Intn(9_000_000)),
			Amount:              g.randomAmount(),
			SenderFullName:      sender.fullName,
			SenderAge:           sender.age,
			BeneficiaryFullName: beneficiary.fullName,
			BeneficiaryAge:      beneficiary.age,
			IssueSolved:         true,
		}

		if g.rand.Float64() < g.cfg.IssueChance {
			tx.IssueID = nextIssueID
			nextIssueID += 1 + g.rand.Intn(50)
			tx.IssueSolved = g.rand.Float64() < g.cfg.SolvedChance
			if tx.IssueSolved {
				tx.IssueMessage = "issue solved"
			} else {
				tx.IssueMessage = g.pick(g.nameFragments.issues)
			}
		} else {
			tx.IssueMessage = "no issue"
		}

		txs[i] = tx
	}

	return txs, nil
}

// clients builds a pool of distinct client names.
func (g *Generator) clients() []client {
	seen := make(map[string]struct{}, g.cfg.NumClients)
	pool := make([]client, 0, g.cfg.NumClients)
	for len(pool) < g.cfg.NumClients {
		name := g.randomFullName()
		if _, ok := seen[name]; ok {
			name = fmt.Sprintf("%s %d", name, len(pool)+1)
		}
		seen[name] = struct{}{}
		pool = append(pool, client{fullName: name, age: 18 + g.rand.Intn(62)})
	}
	return pool
}

func (g *Generator) randomAmount() float64 {
	raw := decimal.NewFromFloat(g.rand.Float64() * g.cfg.MaxAmount)
	amount := raw.Round(2)
	if amount.IsZero() {
		amount = decimal.New(1, -2)
	}
	return amount.InexactFloat64()
}

func (g *Generator) randomFullName() string {
	return fmt.Sprintf("%s %s", g.pick(g.nameFragments.first), g.pick(g.nameFragments.last))
}

func (g *Generator) pick(values []string) string {
	return values[g.rand.Intn(len(values))]
}

type nameFragments struct {
	first  []string
	last   []string
	issues []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first: []string{"Ahmed", "Ali", "Abdullah", "Asad", "Wahaj", "Aslam", "Jane", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Zara"},
		last:  []string{"Khan", "Doe", "Smith", "Chen", "Patel", "Garcia", "Kim", "Ivanov", "Nguyen", "Silva", "Malik", "Lee"},
		issues: []string{
			"Looks like money laundering",
			"Sanctioned beneficiary match",
			"Amount exceeds declared income",
			"Unusual transfer pattern",
			"Missing source of funds",
		},
	}
}
