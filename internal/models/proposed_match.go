package models

import "github.com/google/uuid"

const (
	MatchExact  = "exact"
	MatchFuzzy  = "fuzzy"
	MatchManual = "manual"
)

// ProposedMatch pairs a statement transaction with a bill. It is transient:
// proposals live in memory until the operator confirms or discards them.
type ProposedMatch struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	BillID        uuid.UUID `json:"bill_id"`
	Confidence    int       `json:"confidence"` // 0..100
	MatchType     string    `json:"match_type"` // exact | fuzzy | manual
}
