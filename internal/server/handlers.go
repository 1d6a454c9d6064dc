package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vanshika/txinsights/internal/analytics"
	"github.com/vanshika/txinsights/internal/domain"
)

const transactionsPrefix = "/transactions/"

// Queries is the analytical surface served over HTTP.
type Queries interface {
	TotalAmount() float64
	TotalAmountSentBy(name string) float64
	MaxAmount() float64
	CountUniqueClients() int
	HasOpenComplianceIssue(client string) bool
	TransactionsByBeneficiary() map[string]domain.Transaction
	UnsolvedIssueIDs() []int
	AllSolvedIssueMessages() []string
	TopTransactionsByAmount(n int) []domain.Transaction
	TopSender() (string, bool)
	Summary() analytics.Summary
}

// APIHandlers exposes one read endpoint per query.
type APIHandlers struct {
	logger  *slog.Logger
	queries Queries
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, queries Queries) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		queries: queries,
	}
}

type route struct {
	name    string
	handler http.HandlerFunc
}

// routes lists the endpoints below /transactions/, keyed by their path segment.
func (h *APIHandlers) routes() []route {
	return []route{
		{"totalTransactionAmount", h.totalTransactionAmount},
		{"totalTransactionAmountSentBy", h.totalTransactionAmountSentBy},
		{"maxTransactionAmount", h.maxTransactionAmount},
		{"countUniqueClients", h.countUniqueClients},
		{"hasOpenComplianceIssues", h.hasOpenComplianceIssues},
		{"getTransactionsByBeneficiaryName", h.transactionsByBeneficiary},
		{"getUnsolvedIssueIds", h.unsolvedIssueIDs},
		{"getAllSolvedIssueMessages", h.solvedIssueMessages},
		{"getTop3TransactionsByAmount", h.topTransactionsByAmount},
		{"getTopSender", h.topSender},
		{"summary", h.summary},
	}
}

type valueResponse struct {
	Value any `json:"value"`
}

type topSenderResponse struct {
	Found bool    `json:"found"`
	Value *string `json:"value"`
}

func (h *APIHandlers) totalTransactionAmount(w http.ResponseWriter, r *http.Request) {
	h.respond(w, valueResponse{Value: h.queries.TotalAmount()})
}

func (h *APIHandlers) totalTransactionAmountSentBy(w http.ResponseWriter, r *http.Request) {
	sender := r.URL.Query().Get("senderFullName")
	h.respond(w, valueResponse{Value: h.queries.TotalAmountSentBy(sender)})
}

func (h *APIHandlers) maxTransactionAmount(w http.ResponseWriter, r *http.Request) {
	h.respond(w, valueResponse{Value: h.queries.MaxAmount()})
}

func (h *APIHandlers) countUniqueClients(w http.ResponseWriter, r *http.Request) {
	h.respond(w, valueResponse{Value: h.queries.CountUniqueClients()})
}

func (h *APIHandlers) hasOpenComplianceIssues(w http.ResponseWriter, r *http.Request) {
	client := r.URL.Query().Get("clientFullName")
	h.respond(w, valueResponse{Value: h.queries.HasOpenComplianceIssue(client)})
}

func (h *APIHandlers) transactionsByBeneficiary(w http.ResponseWriter, r *http.Request) {
	h.respond(w, valueResponse{Value: h.queries.TransactionsByBeneficiary()})
}

func (h *APIHandlers) unsolvedIssueIDs(w http.ResponseWriter, r *http.Request) {
	h.respond(w, valueResponse{Value: h.queries.UnsolvedIssueIDs()})
}

func (h *APIHandlers) solvedIssueMessages(w http.ResponseWriter, r *http.Request) {
	h.respond(w, valueResponse{Value: h.queries.AllSolvedIssueMessages()})
}

func (h *APIHandlers) topTransactionsByAmount(w http.ResponseWriter, r *http.Request) {
	n, err := parseInt(r.URL.Query().Get("n"), analytics.DefaultTopN)
	if err != nil {
		writeError(w, http.StatusBadRequest, "n must be an integer")
		return
	}
	h.respond(w, valueResponse{Value: h.queries.TopTransactionsByAmount(n)})
}

func (h *APIHandlers) topSender(w http.ResponseWriter, r *http.Request) {
	name, ok := h.queries.TopSender()
	if !ok {
		h.respond(w, topSenderResponse{Found: false})
		return
	}
	h.respond(w, topSenderResponse{Found: true, Value: &name})
}

func (h *APIHandlers) summary(w http.ResponseWriter, r *http.Request) {
	h.respond(w, valueResponse{Value: h.queries.Summary()})
}

// respond writes a 200 JSON body. An unencodable value becomes a 500 and is
// logged.
func (h *APIHandlers) respond(w http.ResponseWriter, data any) {
	if err := respondJSON(w, http.StatusOK, data); err != nil {
		h.logger.Error("writing response failed", "error", err)
	}
}

func (h *APIHandlers) notFound(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("unknown endpoint", "path", r.URL.Path)
	writeError(w, http.StatusNotFound, "endpoint not found")
}

// getOnly rejects every method but GET (and HEAD) with 405.
func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		next(w, r)
	}
}

func parseInt(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
