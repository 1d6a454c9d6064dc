// Package analytics answers the analytical questions asked of the loaded
// transaction records. Every operation reads the whole current snapshot and
// degrades to a neutral default (zero, empty collection, absent) instead of
// failing.
//
// Amounts that are NaN or infinite contribute nothing to sums, maxima or
// sender totals, and rank below every finite amount in top-N results.
package analytics

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/vanshika/txinsights/internal/domain"
	"github.com/vanshika/txinsights/internal/store"
)

// DefaultTopN is used by TopTransactionsByAmount when n is not positive.
const DefaultTopN = 3

// SnapshotSource provides the snapshot a query runs against.
type SnapshotSource interface {
	Current() *store.Snapshot
}

// Engine runs read-only queries against a SnapshotSource.
type Engine struct {
	source SnapshotSource
}

// SenderTotal is the summed amount sent by one client.
type SenderTotal struct {
	Name  string  `json:"senderFullName"`
	Total float64 `json:"total"`
}

// Summary bundles the headline figures for a snapshot.
type Summary struct {
	Records        int     `json:"records"`
	TotalAmount    float64 `json:"totalAmount"`
	MaxAmount      float64 `json:"maxAmount"`
	UniqueClients  int     `json:"uniqueClients"`
	UnsolvedIssues int     `json:"unsolvedIssues"`
	SolvedIssues   int     `json:"solvedIssues"`
	TopSender      *string `json:"topSender"`
}

// NewEngine returns an Engine reading from source.
func NewEngine(source SnapshotSource) *Engine {
	return &Engine{source: source}
}

func (e *Engine) records() []domain.Transaction {
	snap := e.source.Current()
	if snap == nil {
		return nil
	}
	return snap.Records()
}

// TotalAmount sums the amount of every record.
func (e *Engine) TotalAmount() float64 {
	return sumAmounts(e.records(), func(domain.Transaction) bool { return true })
}

// TotalAmountSentBy sums the amount of records sent by name. Names match
// exactly; an unknown or empty name yields 0.
func (e *Engine) TotalAmountSentBy(name string) float64 {
	return sumAmounts(e.records(), func(t domain.Transaction) bool {
		return t.SenderFullName == name
	})
}

// MaxAmount returns the largest finite amount, or 0 when there is none.
func (e *Engine) MaxAmount() float64 {
	return maxAmount(e.records())
}

// CountUniqueClients counts distinct sender names. Beneficiaries are not
// counted even though the name suggests otherwise; existing consumers rely on
// the sender-only figure.
func (e *Engine) CountUniqueClients() int {
	return countSenders(e.records())
}

// HasOpenComplianceIssue reports whether client sent or received any record
// whose issue is unsolved. Only issueSolved is inspected, so a record without
// an issue (issueId 0) that is marked unsolved still counts.
func (e *Engine) HasOpenComplianceIssue(client string) bool {
	for _, t := range e.records() {
		if t.Involves(client) && !t.IssueSolved {
			return true
		}
	}
	return false
}

// TransactionsByBeneficiary maps each beneficiary name to a single record.
// When a beneficiary appears more than once the last record in load order
// overwrites the earlier ones, which are dropped from the result.
func (e *Engine) TransactionsByBeneficiary() map[string]domain.Transaction {
	records := e.records()
	out := make(map[string]domain.Transaction, len(records))
	for _, t := range records {
		out[t.BeneficiaryFullName] = t
	}
	return out
}

// UnsolvedIssueIDs returns the distinct non-zero issue ids that are not
// solved, in ascending order.
func (e *Engine) UnsolvedIssueIDs() []int {
	seen := make(map[int]struct{})
	ids := make([]int, 0)
	for _, t := range e.records() {
		if !t.HasIssue() || t.IssueSolved {
			continue
		}
		if _, ok := seen[t.IssueID]; ok {
			continue
		}
		seen[t.IssueID] = struct{}{}
		ids = append(ids, t.IssueID)
	}
	slices.Sort(ids)
	return ids
}

// AllSolvedIssueMessages returns the issue message of every solved record in
// load order, duplicates included. issueId is not consulted.
func (e *Engine) AllSolvedIssueMessages() []string {
	messages := make([]string, 0)
	for _, t := range e.records() {
		if t.IssueSolved {
			messages = append(messages, t.IssueMessage)
		}
	}
	return messages
}

// TopTransactionsByAmount returns up to n records with the largest amounts,
// highest first. Equal amounts keep their load order. n <= 0 means
// DefaultTopN.
func (e *Engine) TopTransactionsByAmount(n int) []domain.Transaction {
	if n <= 0 {
		n = DefaultTopN
	}
	sorted := e.records()
	slices.SortStableFunc(sorted, byAmountDesc)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		return []domain.Transaction{}
	}
	return sorted
}

// SenderTotals groups records by sender and sums their amounts. Senders are
// listed in the order they first appear.
func (e *Engine) SenderTotals() []SenderTotal {
	groups := groupBySender(e.records())
	out := make([]SenderTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, SenderTotal{Name: g.name, Total: g.total.InexactFloat64()})
	}
	return out
}

// TopSender returns the sender with the greatest summed amount. On a tie the
// sender that appears first wins. ok is false when there are no records.
func (e *Engine) TopSender() (name string, ok bool) {
	return topSender(groupBySender(e.records()))
}

// Summary computes the headline figures from a single snapshot read.
func (e *Engine) Summary() Summary {
	records := e.records()
	s := Summary{
		Records:       len(records),
		TotalAmount:   sumAmounts(records, func(domain.Transaction) bool { return true }),
		MaxAmount:     maxAmount(records),
		UniqueClients: countSenders(records),
	}
	for _, t := range records {
		if t.IssueSolved {
			s.SolvedIssues++
		} else if t.HasIssue() {
			s.UnsolvedIssues++
		}
	}
	if name, ok := topSender(groupBySender(records)); ok {
		s.TopSender = &name
	}
	return s
}

func sumAmounts(records []domain.Transaction, match func(domain.Transaction) bool) float64 {
	total := decimal.Zero
	for _, t := range records {
		if match(t) && finite(t.Amount) {
			total = total.Add(decimal.NewFromFloat(t.Amount))
		}
	}
	return total.InexactFloat64()
}

func maxAmount(records []domain.Transaction) float64 {
	highest, seen := 0.0, false
	for _, t := range records {
		if !finite(t.Amount) {
			continue
		}
		if !seen || t.Amount > highest {
			highest, seen = t.Amount, true
		}
	}
	return highest
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// byAmountDesc orders finite amounts high to low, then non-finite ones.
func byAmountDesc(a, b domain.Transaction) int {
	fa, fb := finite(a.Amount), finite(b.Amount)
	switch {
	case fa && !fb:
		return -1
	case !fa && fb:
		return 1
	case !fa && !fb:
		return 0
	case a.Amount > b.Amount:
		return -1
	case a.Amount < b.Amount:
		return 1
	default:
		return 0
	}
}

func countSenders(records []domain.Transaction) int {
	senders := make(map[string]struct{}, len(records))
	for _, t := range records {
		senders[t.SenderFullName] = struct{}{}
	}
	return len(senders)
}

type senderGroup struct {
	name  string
	total decimal.Decimal
}

// groupBySender keeps groups in first-seen order so ties resolve the same way
// on every run.
func groupBySender(records []domain.Transaction) []senderGroup {
	index := make(map[string]int)
	groups := make([]senderGroup, 0)
	for _, t := range records {
		i, ok := index[t.SenderFullName]
		if !ok {
			i = len(groups)
			index[t.SenderFullName] = i
			groups = append(groups, senderGroup{name: t.SenderFullName, total: decimal.Zero})
		}
		if finite(t.Amount) {
			groups[i].total = groups[i].total.Add(decimal.NewFromFloat(t.Amount))
		}
	}
	return groups
}

func topSender(groups []senderGroup) (string, bool) {
	if len(groups) == 0 {
		return "", false
	}
	best := groups[0]
	for _, g := range groups[1:] {
		if g.total.GreaterThan(best.total) {
			best = g
		}
	}
	return best.name, true
}
