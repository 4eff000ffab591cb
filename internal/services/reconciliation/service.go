package reconciliation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"statement-reconciliation-backend/internal/models"
	"statement-reconciliation-backend/internal/parser"
	"statement-reconciliation-backend/internal/repository"
	"statement-reconciliation-backend/internal/services/matching"
)

var (
	ErrBatchNotFound       = errors.New("batch not found")
	ErrUnknownTransaction  = errors.New("transaction not found in batch")
	ErrUnknownBill         = errors.New("bill not found in open bill set")
	ErrTransactionResolved = errors.New("transaction already resolved")
	ErrNoProposal          = errors.New("no pending proposal for transaction")
)

// Service is the reconciliation ledger. It holds one batch per import, keeps
// pending proposals in memory until confirmation (browsing or discarding
// proposals mutates no persisted state) and is the sole writer of bill status.
type Service struct {
	bills   repository.BillRepository
	batches repository.BatchRepository
	members repository.MemberRepository

	mu        sync.Mutex
	proposals map[uuid.UUID]map[uuid.UUID]models.ProposedMatch // batch -> tx -> proposal
}

func NewService(
	bills repository.BillRepository,
	batches repository.BatchRepository,
	members repository.MemberRepository,
) *Service {
	return &Service{
		bills:     bills,
		batches:   batches,
		members:   members,
		proposals: make(map[uuid.UUID]map[uuid.UUID]models.ProposedMatch),
	}
}

// ImportSummary is the user-visible outcome of an import: counts plus a
// resolvable proposal list, never a hard failure.
type ImportSummary struct {
	Imported       int `json:"imported"`
	AutoMatched    int `json:"auto_matched"`
	BelowThreshold int `json:"below_threshold"`
	Unmatched      int `json:"unmatched"`
}

// ImportResult carries the persisted batch and the transient proposal set.
type ImportResult struct {
	Batch     *models.ReconciliationBatch `json:"batch"`
	Proposals []models.ProposedMatch      `json:"proposals"`
	Summary   ImportSummary               `json:"summary"`
}

// ImportStatement parses a raw statement export, persists the batch and runs
// the auto-matcher against the current open bills. Parser degradation is not
// an error; the worst case is an empty batch.
func (s *Service) ImportStatement(sourceName, raw string) (*ImportResult, error) {
	parsed := parser.Parse(raw)

	batch := &models.ReconciliationBatch{
		ID:            uuid.New(),
		SourceName:    sourceName,
		BankName:      parsed.BankName,
		AccountNumber: parsed.AccountNumber,
		Status:        models.BatchPending,
		ImportedAt:    time.Now(),
		CreatedAt:     time.Now(),
	}
	for i, ptx := range parsed.Transactions {
		batch.Transactions = append(batch.Transactions, models.StatementTransaction{
			ID:          uuid.New(),
			BatchID:     batch.ID,
			Position:    i,
			Date:        ptx.Date,
			Amount:      ptx.Amount,
			Description: ptx.Description,
			Kind:        ptx.Kind,
			RawMemo:     ptx.RawMemo,
			CreatedAt:   time.Now(),
		})
	}

	if err := s.batches.Create(batch); err != nil {
		return nil, fmt.Errorf("creating batch: %w", err)
	}

	openBills, err := s.bills.ListOpen()
	if err != nil {
		return nil, fmt.Errorf("listing open bills: %w", err)
	}

	report := matching.Match(batch.Transactions, openBills, s.members)

	s.mu.Lock()
	set := make(map[uuid.UUID]models.ProposedMatch, len(report.Proposals))
	for _, p := range report.Proposals {
		set[p.TransactionID] = p
	}
	s.proposals[batch.ID] = set
	s.mu.Unlock()

	return &ImportResult{
		Batch:     batch,
		Proposals: report.Proposals,
		Summary: ImportSummary{
			Imported:       len(batch.Transactions),
			AutoMatched:    len(report.Proposals),
			BelowThreshold: len(report.BelowThreshold),
			Unmatched:      len(report.Unmatched),
		},
	}, nil
}

// GetBatch loads a batch by id.
func (s *Service) GetBatch(batchID uuid.UUID) (*models.ReconciliationBatch, error) {
	batch, err := s.batches.Get(batchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}
	return batch, nil
}

// Proposals returns the pending (unconfirmed) proposals for a batch, ordered
// by transaction position.
func (s *Service) Proposals(batchID uuid.UUID) ([]models.ProposedMatch, error) {
	batch, err := s.GetBatch(batchID)
	if err != nil {
		return nil, err
	}

	position := make(map[uuid.UUID]int, len(batch.Transactions))
	for _, tx := range batch.Transactions {
		position[tx.ID] = tx.Position
	}

	s.mu.Lock()
	pending := make([]models.ProposedMatch, 0, len(s.proposals[batchID]))
	for _, p := range s.proposals[batchID] {
		pending = append(pending, p)
	}
	s.mu.Unlock()

	sort.Slice(pending, func(i, j int) bool {
		return position[pending[i].TransactionID] < position[pending[j].TransactionID]
	})
	return pending, nil
}

const (
	OutcomeApplied  = "applied"
	OutcomeConflict = "conflict"
	OutcomeRejected = "rejected"
)

// ConfirmOutcome is the per-match result of a confirmation call.
type ConfirmOutcome struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	BillID        uuid.UUID `json:"bill_id"`
	Status        string    `json:"status"` // applied | conflict | rejected
}

// ConfirmResult aggregates per-match outcomes; a confirmation never fails as
// a whole because each match is independent.
type ConfirmResult struct {
	Outcomes    []ConfirmOutcome `json:"outcomes"`
	Applied     int              `json:"applied"`
	Conflicts   int              `json:"conflicts"`
	Rejected    int              `json:"rejected"`
	BatchStatus string           `json:"batch_status"`
}

// ConfirmApply settles the given matches against their bills. A match whose
// transaction is not in the batch, or is already resolved, is rejected before
// any bill is touched; each surviving bill is re-checked to still be open
// immediately before mutation, and a bill that moved on counts as a
// settlement conflict. The remaining matches proceed either way; there is no
// partial rollback.
func (s *Service) ConfirmApply(batchID uuid.UUID, matches []models.ProposedMatch) (*ConfirmResult, error) {
	batch, err := s.GetBatch(batchID)
	if err != nil {
		return nil, err
	}

	result := &ConfirmResult{}
	var appliedBills, resolvedTxs []uuid.UUID

	for _, match := range matches {
		// a transaction maps to at most one bill within a batch; appending to
		// the working copy here also rejects a duplicate transaction id later
		// in the same call
		if batch.Transaction(match.TransactionID) == nil || batch.Resolved(match.TransactionID) {
			result.Rejected++
			result.Outcomes = append(result.Outcomes, ConfirmOutcome{
				TransactionID: match.TransactionID,
				BillID:        match.BillID,
				Status:        OutcomeRejected,
			})
			continue
		}

		ok, err := s.bills.Settle(match.BillID, repository.SettlementMeta{
			BatchID:       batchID,
			TransactionID: match.TransactionID,
			PaidAt:        time.Now(),
		})
		if err != nil {
			return nil, fmt.Errorf("settling bill %s: %w", match.BillID, err)
		}
		if !ok {
			result.Conflicts++
			result.Outcomes = append(result.Outcomes, ConfirmOutcome{
				TransactionID: match.TransactionID,
				BillID:        match.BillID,
				Status:        OutcomeConflict,
			})
			continue
		}

		if !batch.Applied(match.BillID) {
			batch.AppliedBillIDs = append(batch.AppliedBillIDs, match.BillID)
			appliedBills = append(appliedBills, match.BillID)
		}
		batch.ResolvedTxIDs = append(batch.ResolvedTxIDs, match.TransactionID)
		resolvedTxs = append(resolvedTxs, match.TransactionID)

		details, _ := json.Marshal(map[string]interface{}{
			"confidence": match.Confidence,
			"match_type": match.MatchType,
		})
		confirmed := &models.ConfirmedMatch{
			ID:            uuid.New(),
			BatchID:       batchID,
			TransactionID: match.TransactionID,
			BillID:        match.BillID,
			Confidence:    match.Confidence,
			MatchType:     match.MatchType,
			Details:       details,
			ConfirmedAt:   time.Now(),
		}
		if err := s.batches.AppendConfirmed(confirmed); err != nil {
			return nil, fmt.Errorf("appending confirmed match: %w", err)
		}

		s.mu.Lock()
		delete(s.proposals[batchID], match.TransactionID)
		s.mu.Unlock()

		result.Applied++
		result.Outcomes = append(result.Outcomes, ConfirmOutcome{
			TransactionID: match.TransactionID,
			BillID:        match.BillID,
			Status:        OutcomeApplied,
		})
	}

	// a call that applied nothing must not write the batch row back: its
	// working copy may be stale relative to a racing confirmation
	if result.Applied == 0 {
		result.BatchStatus = batch.Status
		return result, nil
	}

	// merge this call's resolutions into the latest persisted copy instead of
	// overwriting the whole row, so concurrent confirmations cannot clobber
	// each other's applied/resolved sets
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh, err := s.GetBatch(batchID)
	if err != nil {
		return nil, err
	}
	for _, id := range appliedBills {
		if !fresh.Applied(id) {
			fresh.AppliedBillIDs = append(fresh.AppliedBillIDs, id)
		}
	}
	for _, id := range resolvedTxs {
		if !fresh.Resolved(id) {
			fresh.ResolvedTxIDs = append(fresh.ResolvedTxIDs, id)
		}
	}
	s.refreshStatus(fresh)
	if err := s.batches.Save(fresh); err != nil {
		return nil, fmt.Errorf("saving batch: %w", err)
	}

	result.BatchStatus = fresh.Status
	return result, nil
}

// ManualAssociate records an operator override as a pending proposal with
// full confidence. The referenced transaction must belong to the batch and
// the bill must still be in the open set; otherwise the proposal set is left
// unchanged.
func (s *Service) ManualAssociate(batchID, txID, billID uuid.UUID) (*models.ProposedMatch, error) {
	batch, err := s.GetBatch(batchID)
	if err != nil {
		return nil, err
	}
	if batch.Transaction(txID) == nil {
		return nil, ErrUnknownTransaction
	}
	if batch.Resolved(txID) {
		return nil, ErrTransactionResolved
	}

	bill, err := s.bills.GetByID(billID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownBill
		}
		return nil, err
	}
	if !bill.Open() {
		return nil, ErrUnknownBill
	}

	proposal := models.ProposedMatch{
		TransactionID: txID,
		BillID:        billID,
		Confidence:    100,
		MatchType:     models.MatchManual,
	}

	s.mu.Lock()
	if s.proposals[batchID] == nil {
		s.proposals[batchID] = make(map[uuid.UUID]models.ProposedMatch)
	}
	s.proposals[batchID][txID] = proposal
	s.mu.Unlock()

	return &proposal, nil
}

// Unassociate removes an unconfirmed proposal. Confirmed matches are
// immutable; reversing a settlement is a compensating operation out of scope.
func (s *Service) Unassociate(batchID, txID uuid.UUID) error {
	if _, err := s.GetBatch(batchID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[batchID][txID]; !ok {
		return ErrNoProposal
	}
	delete(s.proposals[batchID], txID)
	return nil
}

// Skip marks a transaction as explicitly resolved without a bill, discarding
// any pending proposal for it. Skipping the last unresolved transaction
// completes the batch.
func (s *Service) Skip(batchID, txID uuid.UUID) (*models.ReconciliationBatch, error) {
	batch, err := s.GetBatch(batchID)
	if err != nil {
		return nil, err
	}
	if batch.Transaction(txID) == nil {
		return nil, ErrUnknownTransaction
	}
	if batch.Resolved(txID) {
		return nil, ErrTransactionResolved
	}

	batch.ResolvedTxIDs = append(batch.ResolvedTxIDs, txID)

	s.mu.Lock()
	delete(s.proposals[batchID], txID)
	s.mu.Unlock()

	s.refreshStatus(batch)
	if err := s.batches.Save(batch); err != nil {
		return nil, fmt.Errorf("saving batch: %w", err)
	}
	return batch, nil
}

func (s *Service) Bills() repository.BillRepository {
	return s.bills
}

func (s *Service) Members() repository.MemberRepository {
	return s.members
}

// refreshStatus derives the batch state from the resolved set: pending while
// nothing is resolved, partial in between, completed once the operator has
// resolved every transaction. A batch with no transactions has nothing to
// resolve and stays pending.
func (s *Service) refreshStatus(batch *models.ReconciliationBatch) {
	switch {
	case len(batch.ResolvedTxIDs) == 0:
		batch.Status = models.BatchPending
	case len(batch.ResolvedTxIDs) < len(batch.Transactions):
		batch.Status = models.BatchPartial
	default:
		batch.Status = models.BatchCompleted
		if batch.CompletedAt == nil {
			now := time.Now()
			batch.CompletedAt = &now
		}
	}
}
