package matching

import (
	"math"

	"github.com/google/uuid"

	"statement-reconciliation-backend/internal/models"
	"statement-reconciliation-backend/internal/services/similarity"
)

// AmountEpsilon is the tolerance for amount equality between a transaction
// and a candidate bill, in currency units.
const AmountEpsilon = 0.01

// fuzzyThreshold is the minimum similarity a fuzzy proposal must exceed.
const fuzzyThreshold = 40

// OwnerDirectory resolves a bill's owner id to a display name used for fuzzy
// disambiguation. The matcher only reads.
type OwnerDirectory interface {
	OwnerName(id uuid.UUID) (string, bool)
}

// Report is the outcome of one matcher run.
type Report struct {
	Proposals []models.ProposedMatch
	// BelowThreshold lists transactions that had same-amount candidates but
	// no similarity above the threshold; they fall through to manual review.
	BelowThreshold []uuid.UUID
	// Unmatched lists transactions with no open bill at their amount.
	Unmatched []uuid.UUID
}

// Match proposes bill pairings for the given transactions. Each transaction is
// considered independently in order; each bill is claimed by at most one
// proposal per run, first claim wins. The greedy pass is deterministic for
// identical ordered inputs and mutates nothing.
func Match(txs []models.StatementTransaction, openBills []models.Bill, owners OwnerDirectory) Report {
	var report Report
	claimed := make(map[uuid.UUID]bool, len(openBills))

	for _, tx := range txs {
		var candidates []models.Bill
		for _, bill := range openBills {
			if claimed[bill.ID] {
				continue
			}
			if math.Abs(bill.Amount-tx.Amount) <= AmountEpsilon {
				candidates = append(candidates, bill)
			}
		}

		switch len(candidates) {
		case 0:
			report.Unmatched = append(report.Unmatched, tx.ID)

		case 1:
			// amount alone disambiguates
			claimed[candidates[0].ID] = true
			report.Proposals = append(report.Proposals, models.ProposedMatch{
				TransactionID: tx.ID,
				BillID:        candidates[0].ID,
				Confidence:    100,
				MatchType:     models.MatchExact,
			})

		default:
			best := candidates[0]
			bestScore := -1
			for _, bill := range candidates {
				name, _ := owners.OwnerName(bill.OwnerID)
				if s := similarity.Score(tx.Description, name); s > bestScore {
					best = bill
					bestScore = s
				}
			}

			if bestScore > fuzzyThreshold {
				claimed[best.ID] = true
				report.Proposals = append(report.Proposals, models.ProposedMatch{
					TransactionID: tx.ID,
					BillID:        best.ID,
					Confidence:    bestScore,
					MatchType:     models.MatchFuzzy,
				})
			} else {
				report.BelowThreshold = append(report.BelowThreshold, tx.ID)
			}
		}
	}

	return report
}
