package ledger

import "dominion/internal/domain/campaign"

type CommitRequest struct {
	FactionID string
	Delta     campaign.LedgerDelta
	Reason    string
}

type Result struct {
	campaign.LedgerPreview
	Committed bool               `json:"committed"`
	Entry     *campaign.LogEntry `json:"entry,omitempty"`
}

type TransferRequest struct {
	FromID   string
	ToID     string
	Category campaign.Category
	Amount   int
	Reason   string
}

type TransferResult struct {
	OK     bool   `json:"ok"`
	Amount int    `json:"amount"`
	Debit  Result `json:"debit"`
	Credit Result `json:"credit"`
}
