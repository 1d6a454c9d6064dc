package domain

// Transaction is a single transfer between two clients, optionally carrying
// compliance issue metadata. Clients are identified by their full names.
type Transaction struct {
	ID                  int64   `json:"mtn"`
	Amount              float64 `json:"amount"`
	SenderFullName      string  `json:"senderFullName"`
	SenderAge           int     `json:"senderAge"`
	BeneficiaryFullName string  `json:"beneficiaryFullName"`
	BeneficiaryAge      int     `json:"beneficiaryAge"`
	IssueID             int     `json:"issueId"`
	IssueSolved         bool    `json:"issueSolved"`
	IssueMessage        string  `json:"issueMessage"`
}

// HasIssue reports whether a compliance issue is attached. An issue ID of zero
// means the transaction was never flagged.
func (t Transaction) HasIssue() bool {
	return t.IssueID != 0
}

// Involves reports whether name is the sender or the beneficiary.
func (t Transaction) Involves(name string) bool {
	return t.SenderFullName == name || t.BeneficiaryFullName == name
}
