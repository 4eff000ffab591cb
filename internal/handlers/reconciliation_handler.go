package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"statement-reconciliation-backend/internal/models"
	service "statement-reconciliation-backend/internal/services/reconciliation"
)

type ReconciliationHandler struct {
	service *service.Service
}

func NewReconciliationHandler(s *service.Service) *ReconciliationHandler {
	return &ReconciliationHandler{service: s}
}

// ImportStatement accepts a raw statement export, creates a batch and runs
// the auto-matcher. Arbitrary text is accepted; unparseable input yields an
// empty batch rather than an error.
func (h *ReconciliationHandler) ImportStatement(c *gin.Context) {
	var payload struct {
		SourceName string `json:"source_name"`
		Statement  string `json:"statement"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.Statement == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "statement text required"})
		return
	}
	if payload.SourceName == "" {
		payload.SourceName = "statement-" + time.Now().Format("20060102-150405")
	}

	result, err := h.service.ImportStatement(payload.SourceName, payload.Statement)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("imported batch %s: %d transactions, %d auto-matched",
		result.Batch.ID, result.Summary.Imported, result.Summary.AutoMatched)

	c.JSON(http.StatusOK, gin.H{
		"batch":     result.Batch,
		"proposals": result.Proposals,
		"summary":   result.Summary,
	})
}

func (h *ReconciliationHandler) GetBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	batch, err := h.service.GetBatch(batchID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	pending, err := h.service.Proposals(batchID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"batch":             batch,
		"pending_proposals": len(pending),
		"resolved":          len(batch.ResolvedTxIDs),
		"total":             len(batch.Transactions),
	})
}

func (h *ReconciliationHandler) ListProposals(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	proposals, err := h.service.Proposals(batchID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// Confirm applies the posted matches, or every pending proposal when the body
// names none. Outcomes are per-match; conflicts do not abort siblings.
func (h *ReconciliationHandler) Confirm(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	var payload struct {
		Matches []models.ProposedMatch `json:"matches"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
	}

	matches := payload.Matches
	if len(matches) == 0 {
		matches, err = h.service.Proposals(batchID)
		if err != nil {
			h.renderError(c, err)
			return
		}
	}

	result, err := h.service.ConfirmApply(batchID, matches)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ReconciliationHandler) ManualMatch(c *gin.Context) {
	batchID, txID, ok := h.batchAndTx(c)
	if !ok {
		return
	}

	var payload struct {
		BillID string `json:"bill_id"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	billID, err := uuid.Parse(payload.BillID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bill ID"})
		return
	}

	proposal, err := h.service.ManualAssociate(batchID, txID, billID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "proposal recorded", "proposal": proposal})
}

func (h *ReconciliationHandler) Unmatch(c *gin.Context) {
	batchID, txID, ok := h.batchAndTx(c)
	if !ok {
		return
	}

	if err := h.service.Unassociate(batchID, txID); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "proposal removed"})
}

func (h *ReconciliationHandler) Skip(c *gin.Context) {
	batchID, txID, ok := h.batchAndTx(c)
	if !ok {
		return
	}

	batch, err := h.service.Skip(batchID, txID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "transaction skipped", "batch_status": batch.Status})
}

func (h *ReconciliationHandler) ListOpenBills(c *gin.Context) {
	bills, err := h.service.Bills().ListOpen()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

func (h *ReconciliationHandler) CreateBill(c *gin.Context) {
	var payload struct {
		OwnerID string  `json:"owner_id"`
		Amount  float64 `json:"amount"`
		DueDate string  `json:"due_date"` // YYYY-MM-DD
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ownerID, err := uuid.Parse(payload.OwnerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner ID"})
		return
	}
	if payload.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	dueDate, err := time.Parse("2006-01-02", payload.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due date, expected YYYY-MM-DD"})
		return
	}

	bill := &models.Bill{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Amount:    payload.Amount,
		Status:    models.BillPending,
		DueDate:   dueDate,
		CreatedAt: time.Now(),
	}
	if err := h.service.Bills().Create(bill); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "bill created", "bill": bill})
}

func (h *ReconciliationHandler) CreateMember(c *gin.Context) {
	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.BindJSON(&payload); err != nil || payload.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member name required"})
		return
	}

	member := &models.Member{
		ID:        uuid.New(),
		Name:      payload.Name,
		Email:     payload.Email,
		CreatedAt: time.Now(),
	}
	if err := h.service.Members().Create(member); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member created", "member": member})
}

func (h *ReconciliationHandler) batchAndTx(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return uuid.Nil, uuid.Nil, false
	}
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return batchID, txID, true
}

func (h *ReconciliationHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownTransaction),
		errors.Is(err, service.ErrUnknownBill),
		errors.Is(err, service.ErrTransactionResolved),
		errors.Is(err, service.ErrNoProposal):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
