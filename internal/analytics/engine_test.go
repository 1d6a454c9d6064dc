package analytics

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/vanshika/txinsights/internal/domain"
	"github.com/vanshika/txinsights/internal/loader"
	"github.com/vanshika/txinsights/internal/logging"
	"github.com/vanshika/txinsights/internal/store"
)

func scenario() []domain.Transaction {
	return []domain.Transaction{
		{ID: 1234567, Amount: 100, SenderFullName: "Ahmed", BeneficiaryFullName: "Ali", IssueID: 12678, IssueSolved: true, IssueMessage: "issue solved"},
		{ID: 1234567, Amount: 200, SenderFullName: "Abdullah", BeneficiaryFullName: "Asad", IssueID: 6554, IssueSolved: true, IssueMessage: "issue solved"},
		{ID: 1234567, Amount: 300, SenderFullName: "Ali", BeneficiaryFullName: "Wahaj", IssueID: 9875, IssueSolved: true, IssueMessage: "issue solved"},
		{ID: 1234567, Amount: 400, SenderFullName: "Ahmed", BeneficiaryFullName: "Aslam", IssueID: 0, IssueSolved: false, IssueMessage: "issue solved"},
	}
}

func newEngine(records []domain.Transaction) *Engine {
	return NewEngine(store.NewStatic(records))
}

func TestEngineScenario(t *testing.T) {
	e := newEngine(scenario())

	if got := e.TotalAmount(); got != 1000 {
		t.Fatalf("TotalAmount = %v, want 1000", got)
	}
	if got := e.TotalAmountSentBy("Ahmed"); got != 500 {
		t.Fatalf("TotalAmountSentBy(Ahmed) = %v, want 500", got)
	}
	if got := e.MaxAmount(); got != 400 {
		t.Fatalf("MaxAmount = %v, want 400", got)
	}
	if got := e.CountUniqueClients(); got != 3 {
		t.Fatalf("CountUniqueClients = %d, want 3", got)
	}
	if e.HasOpenComplianceIssue("Ali") {
		t.Fatalf("expected Ali to have no open issue")
	}
	if got := len(e.TransactionsByBeneficiary()); got != 4 {
		t.Fatalf("TransactionsByBeneficiary size = %d, want 4", got)
	}
	if got := e.UnsolvedIssueIDs(); len(got) != 0 {
		t.Fatalf("UnsolvedIssueIDs = %v, want empty", got)
	}
	if got := len(e.AllSolvedIssueMessages()); got != 3 {
		t.Fatalf("AllSolvedIssueMessages size = %d, want 3", got)
	}

	top := e.TopTransactionsByAmount(3)
	amounts := make([]float64, 0, len(top))
	for _, tx := range top {
		amounts = append(amounts, tx.Amount)
	}
	if !slices.Equal(amounts, []float64{400, 300, 200}) {
		t.Fatalf("TopTransactionsByAmount(3) = %v, want [400 300 200]", amounts)
	}

	name, ok := e.TopSender()
	if !ok || name != "Ahmed" {
		t.Fatalf("TopSender = %q, %v; want Ahmed, true", name, ok)
	}
}

func TestEngineEmptySnapshotDefaults(t *testing.T) {
	e := newEngine(nil)

	if e.TotalAmount() != 0 || e.TotalAmountSentBy("Ahmed") != 0 || e.MaxAmount() != 0 {
		t.Fatalf("expected zero sums and max on empty input")
	}
	if e.CountUniqueClients() != 0 {
		t.Fatalf("expected no clients")
	}
	if e.HasOpenComplianceIssue("Ali") {
		t.Fatalf("expected no open issue on empty input")
	}
	if got := e.TransactionsByBeneficiary(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil map, got %v", got)
	}
	if got := e.UnsolvedIssueIDs(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil ids, got %v", got)
	}
	if got := e.AllSolvedIssueMessages(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil messages, got %v", got)
	}
	if got := e.TopTransactionsByAmount(3); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil top list, got %v", got)
	}
	if name, ok := e.TopSender(); ok || name != "" {
		t.Fatalf("expected absent top sender, got %q", name)
	}
	if s := e.Summary(); s.Records != 0 || s.TopSender != nil {
		t.Fatalf("unexpected summary on empty input: %+v", s)
	}
}

func TestTotalAmountSentByUnknownOrEmptyName(t *testing.T) {
	e := newEngine(scenario())
	for _, name := range []string{"", "ahmed", "Ahmed ", "Nobody"} {
		if got := e.TotalAmountSentBy(name); got != 0 {
			t.Errorf("TotalAmountSentBy(%q) = %v, want 0", name, got)
		}
	}
}

func TestTotalAmountIsOrderIndependent(t *testing.T) {
	forward := []domain.Transaction{{Amount: 0.1}, {Amount: 0.2}, {Amount: 0.3}}
	backward := []domain.Transaction{{Amount: 0.3}, {Amount: 0.2}, {Amount: 0.1}}

	a := newEngine(forward).TotalAmount()
	b := newEngine(backward).TotalAmount()
	if a != b {
		t.Fatalf("sum depends on order: %v vs %v", a, b)
	}
	if a != 0.6 {
		t.Fatalf("expected 0.6, got %v", a)
	}
}

func TestCountUniqueClientsCountsSendersOnly(t *testing.T) {
	e := newEngine([]domain.Transaction{
		{SenderFullName: "A", BeneficiaryFullName: "X"},
		{SenderFullName: "A", BeneficiaryFullName: "Y"},
		{SenderFullName: "a", BeneficiaryFullName: "Z"},
	})
	if got := e.CountUniqueClients(); got != 2 {
		t.Fatalf("CountUniqueClients = %d, want 2", got)
	}
}

func TestHasOpenComplianceIssue(t *testing.T) {
	e := newEngine(scenario())

	cases := map[string]bool{
		"Ahmed":  true, // sender of the unsolved issueId 0 record
		"Aslam":  true, // beneficiary of the same record
		"Ali":    false,
		"Wahaj":  false,
		"Nobody": false,
	}
	for name, want := range cases {
		if got := e.HasOpenComplianceIssue(name); got != want {
			t.Errorf("HasOpenComplianceIssue(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestTransactionsByBeneficiaryLastWins(t *testing.T) {
	e := newEngine([]domain.Transaction{
		{ID: 1, BeneficiaryFullName: "Asad", Amount: 10},
		{ID: 2, BeneficiaryFullName: "Wahaj", Amount: 20},
		{ID: 3, BeneficiaryFullName: "Asad", Amount: 30},
	})

	got := e.TransactionsByBeneficiary()
	if len(got) != 2 {
		t.Fatalf("expected 2 beneficiaries, got %d", len(got))
	}
	if got["Asad"].ID != 3 {
		t.Fatalf("expected last Asad record to win, got id %d", got["Asad"].ID)
	}
}

func TestUnsolvedIssueIDs(t *testing.T) {
	e := newEngine([]domain.Transaction{
		{IssueID: 42, IssueSolved: false},
		{IssueID: 7, IssueSolved: false},
		{IssueID: 42, IssueSolved: false},
		{IssueID: 9, IssueSolved: true},
		{IssueID: 0, IssueSolved: false},
	})

	if got := e.UnsolvedIssueIDs(); !slices.Equal(got, []int{7, 42}) {
		t.Fatalf("UnsolvedIssueIDs = %v, want [7 42]", got)
	}
}

func TestAllSolvedIssueMessagesKeepsOrderAndDuplicates(t *testing.T) {
	e := newEngine([]domain.Transaction{
		{IssueID: 1, IssueSolved: true, IssueMessage: "b"},
		{IssueID: 2, IssueSolved: false, IssueMessage: "open"},
		{IssueID: 0, IssueSolved: true, IssueMessage: "a"},
		{IssueID: 3, IssueSolved: true, IssueMessage: "b"},
	})

	want := []string{"b", "a", "b"}
	if got := e.AllSolvedIssueMessages(); !slices.Equal(got, want) {
		t.Fatalf("AllSolvedIssueMessages = %v, want %v", got, want)
	}
}

func TestTopTransactionsByAmount(t *testing.T) {
	records := []domain.Transaction{
		{ID: 1, Amount: 50},
		{ID: 2, Amount: 80},
		{ID: 3, Amount: 50},
		{ID: 4, Amount: 80},
		{ID: 5, Amount: 10},
	}
	e := newEngine(records)

	ids := func(txs []domain.Transaction) []int64 {
		out := make([]int64, 0, len(txs))
		for _, tx := range txs {
			out = append(out, tx.ID)
		}
		return out
	}

	if got := ids(e.TopTransactionsByAmount(3)); !slices.Equal(got, []int64{2, 4, 1}) {
		t.Fatalf("stable top 3 = %v, want [2 4 1]", got)
	}
	if got := ids(e.TopTransactionsByAmount(0)); !slices.Equal(got, []int64{2, 4, 1}) {
		t.Fatalf("n=0 should fall back to default, got %v", got)
	}
	if got := ids(e.TopTransactionsByAmount(10)); !slices.Equal(got, []int64{2, 4, 1, 3, 5}) {
		t.Fatalf("n larger than input = %v", got)
	}

	two := newEngine(records[:2]).TopTransactionsByAmount(3)
	if len(two) != 2 {
		t.Fatalf("expected both records from a 2-record set, got %d", len(two))
	}
	if records[0].ID != 1 || records[1].ID != 2 {
		t.Fatalf("input must not be reordered")
	}
}

func TestTopSenderTieGoesToFirstSender(t *testing.T) {
	e := newEngine([]domain.Transaction{
		{SenderFullName: "Zara", Amount: 100},
		{SenderFullName: "Adam", Amount: 60},
		{SenderFullName: "Adam", Amount: 40},
	})

	name, ok := e.TopSender()
	if !ok || name != "Zara" {
		t.Fatalf("TopSender = %q, want Zara on tie", name)
	}
}

func TestSenderTotalsFirstSeenOrder(t *testing.T) {
	e := newEngine(scenario())

	want := []SenderTotal{{"Ahmed", 500}, {"Abdullah", 200}, {"Ali", 300}}
	if got := e.SenderTotals(); !slices.Equal(got, want) {
		t.Fatalf("SenderTotals = %v, want %v", got, want)
	}
}

func TestSummary(t *testing.T) {
	s := newEngine(scenario()).Summary()

	if s.Records != 4 || s.TotalAmount != 1000 || s.MaxAmount != 400 || s.UniqueClients != 3 {
		t.Fatalf("unexpected summary figures: %+v", s)
	}
	if s.SolvedIssues != 3 || s.UnsolvedIssues != 0 {
		t.Fatalf("unexpected issue counts: %+v", s)
	}
	if s.TopSender == nil || *s.TopSender != "Ahmed" {
		t.Fatalf("expected top sender Ahmed, got %v", s.TopSender)
	}
}

func TestNonFiniteAmountsAreIgnored(t *testing.T) {
	e := newEngine([]domain.Transaction{
		{ID: 1, Amount: math.NaN(), SenderFullName: "a"},
		{ID: 2, Amount: 1, SenderFullName: "b"},
		{ID: 3, Amount: math.Inf(1), SenderFullName: "a"},
		{ID: 4, Amount: 2, SenderFullName: "c"},
		{ID: 5, Amount: math.Inf(-1), SenderFullName: "c"},
	})

	if got := e.TotalAmount(); got != 3 {
		t.Fatalf("TotalAmount = %v, want 3", got)
	}
	if got := e.TotalAmountSentBy("a"); got != 0 {
		t.Fatalf("TotalAmountSentBy(a) = %v, want 0", got)
	}
	if got := e.MaxAmount(); got != 2 {
		t.Fatalf("MaxAmount = %v, want 2", got)
	}
	if name, ok := e.TopSender(); !ok || name != "c" {
		t.Fatalf("TopSender = %q, %v; want c", name, ok)
	}

	want := []SenderTotal{{"a", 0}, {"b", 1}, {"c", 2}}
	if got := e.SenderTotals(); !slices.Equal(got, want) {
		t.Fatalf("SenderTotals = %v, want %v", got, want)
	}

	s := e.Summary()
	if s.Records != 5 || s.TotalAmount != 3 || s.MaxAmount != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}

	var ids []int64
	for _, tx := range e.TopTransactionsByAmount(5) {
		ids = append(ids, tx.ID)
	}
	if !slices.Equal(ids, []int64{4, 2, 1, 3, 5}) {
		t.Fatalf("TopTransactionsByAmount = %v, want finite amounts first", ids)
	}
}

func TestMaxAmountWithOnlyNonFiniteAmounts(t *testing.T) {
	e := newEngine([]domain.Transaction{{Amount: math.NaN()}, {Amount: math.Inf(1)}})
	if got := e.MaxAmount(); got != 0 {
		t.Fatalf("MaxAmount = %v, want 0", got)
	}
}

type failingLoader struct{}

func (failingLoader) Load(ctx context.Context) ([]domain.Transaction, error) {
	return nil, errors.New("unreadable")
}

func (failingLoader) Describe() string { return "broken" }

func TestEngineAfterFailedLoadBehavesAsEmpty(t *testing.T) {
	s := store.New(failingLoader{}, logging.Discard())
	s.Load(context.Background())
	e := NewEngine(s)

	if e.TotalAmount() != 0 || e.MaxAmount() != 0 {
		t.Fatalf("expected neutral defaults after failed load")
	}
	if _, ok := e.TopSender(); ok {
		t.Fatalf("expected no top sender after failed load")
	}
}

func TestEngineSeesReloadedSnapshot(t *testing.T) {
	batches := [][]domain.Transaction{scenario(), scenario()[:1]}
	calls := 0
	source := loader.Func(func(context.Context) ([]domain.Transaction, error) {
		b := batches[calls]
		calls++
		return b, nil
	})
	s := store.New(source, logging.Discard())
	s.Load(context.Background())
	e := NewEngine(s)

	if e.TotalAmount() != 1000 {
		t.Fatalf("expected 1000 before reload")
	}
	if _, err := s.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if e.TotalAmount() != 100 {
		t.Fatalf("expected 100 after reload, got %v", e.TotalAmount())
	}
}
