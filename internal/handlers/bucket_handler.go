package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/models"
	"wisespend/internal/period"
	"wisespend/internal/services"
)

// BucketHandler handles reading and editing the data buckets of a period.
type BucketHandler struct {
	orchestrator services.Orchestrator
}

// NewBucketHandler creates a new BucketHandler.
func NewBucketHandler(orchestrator services.Orchestrator) *BucketHandler {
	return &BucketHandler{orchestrator: orchestrator}
}

// AddIncomeItemRequest represents the request payload for adding an income source.
type AddIncomeItemRequest struct {
	Source string          `json:"source" binding:"required,min=1,max=200"`
	Amount decimal.Decimal `json:"amount" binding:"gte=0"`
	Active *bool           `json:"active"`
}

// AddExpenseItemRequest represents the request payload for adding an expense.
type AddExpenseItemRequest struct {
	Category string          `json:"category" binding:"required,min=1,max=200"`
	Amount   decimal.Decimal `json:"amount" binding:"gte=0"`
	Active   *bool           `json:"active"`
}

// SetAmountRequest represents the request payload for changing an item amount.
type SetAmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"gte=0"`
}

// MarkPaidRequest represents the request payload for recording a payment.
type MarkPaidRequest struct {
	Paid *bool `json:"paid" binding:"required"`
}

func activeOrDefault(b *bool) bool {
	return b == nil || *b
}

// GetBuckets returns every bucket present for a period and the missing kinds.
// @Summary     Get period buckets
// @Description Get every bucket stored for a period and the kinds it is missing
// @Tags        buckets
// @Produce     json
// @Param       id path string true "Period (YYYY_MM)"
// @Success     200 {object} object{period=string,buckets=object,integrity=models.IntegrityReport} "Buckets"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/buckets [get]
// @Summary     Get a bucket
// @Description Get one bucket of a period
// @Tags        buckets
// @Produce     json
// @Param       id   path string true "Period (YYYY_MM)"
// @Param       kind path string true "Bucket kind" Enums(income, fixed_expenses, variable_expenses, extra_expenses, configuration, user_profile, reports)
// @Success     200 {object} object{kind=string,document=object} "Bucket"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Period or bucket not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/buckets/{kind} [get]
func (h *BucketHandler) GetBuckets(c *gin.Context) {
	id, err := parsePeriodParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	record, report, err := h.orchestrator.ReadAllBuckets(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": id, "buckets": record.Buckets, "integrity": report})
}

// GetBucket returns one bucket of a period.
func (h *BucketHandler) GetBucket(c *gin.Context) {
	id, kind, ok := h.bucketParams(c)
	if !ok {
		return
	}
	doc, err := h.orchestrator.ReadBucket(c.Request.Context(), id, kind)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "document": doc})
}

// PutBucket replaces one bucket of an editable period.
// @Summary     Replace a bucket
// @Description Replace one bucket of an editable period with the given document
// @Tags        buckets
// @Accept      json
// @Produce     json
// @Param       id      path string true "Period (YYYY_MM)"
// @Param       kind    path string true "Bucket kind" Enums(income, fixed_expenses, variable_expenses, extra_expenses, configuration, user_profile, reports)
// @Param       request body object true "Bucket document"
// @Success     200 {object} object{kind=string,document=object} "Bucket saved"
// @Failure     400 {object} ErrorResponse "Invalid document"
// @Failure     403 {object} ErrorResponse "Period is archived"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/buckets/{kind} [put]
func (h *BucketHandler) PutBucket(c *gin.Context) {
	id, kind, ok := h.bucketParams(c)
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	doc, err := models.DecodeDocument(kind, raw)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := h.orchestrator.WriteBucket(c.Request.Context(), id, kind, doc); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "document": doc})
}

// AddIncomeItem appends an income source to the current period.
// @Summary     Add an income source
// @Description Append an income source to the current period
// @Tags        items
// @Accept      json
// @Produce     json
// @Param       request body AddIncomeItemRequest true "Income source"
// @Success     201 {object} object{item=models.IncomeItem} "Item added"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Current period is archived"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /current/income [post]
func (h *BucketHandler) AddIncomeItem(c *gin.Context) {
	var req AddIncomeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	item, err := h.orchestrator.AddIncomeItem(c.Request.Context(), models.IncomeItem{
		Source: req.Source,
		Amount: req.Amount,
		Active: activeOrDefault(req.Active),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// AddExpenseItem appends an expense to an expense bucket of the current period.
// @Summary     Add an expense
// @Description Append an expense to an expense bucket of the current period
// @Tags        items
// @Accept      json
// @Produce     json
// @Param       kind    path string                true "Expense bucket" Enums(fixed_expenses, variable_expenses, extra_expenses)
// @Param       request body AddExpenseItemRequest true "Expense"
// @Success     201 {object} object{item=models.ExpenseItem} "Item added"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Current period is archived"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /current/expenses/{kind} [post]
func (h *BucketHandler) AddExpenseItem(c *gin.Context) {
	kind, err := parseKindParam(c, "kind")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var req AddExpenseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	item, err := h.orchestrator.AddExpenseItem(c.Request.Context(), kind, models.ExpenseItem{
		Category: req.Category,
		Amount:   req.Amount,
		Active:   activeOrDefault(req.Active),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// SetItemAmount changes the amount of an item in the current period.
// @Summary     Change an item amount
// @Description Change the amount of an item in the current period and recompute the total
// @Tags        items
// @Accept      json
// @Produce     json
// @Param       kind    path string           true "Bucket kind"
// @Param       itemId  path string           true "Item ID"
// @Param       request body SetAmountRequest true "New amount"
// @Success     200 {object} object{message=string} "Item updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Current period is archived"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /current/{kind}/items/{itemId} [patch]
func (h *BucketHandler) SetItemAmount(c *gin.Context) {
	kind, err := parseKindParam(c, "kind")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var req SetAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := h.orchestrator.SetItemAmount(c.Request.Context(), kind, c.Param("itemId"), req.Amount); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item updated successfully"})
}

// MarkItemPaid records or clears the payment of an expense item.
// @Summary     Mark an expense paid
// @Description Record or clear the payment of an expense item in the current period
// @Tags        items
// @Accept      json
// @Produce     json
// @Param       kind    path string          true "Expense bucket"
// @Param       itemId  path string          true "Item ID"
// @Param       request body MarkPaidRequest true "Payment flag"
// @Success     200 {object} object{message=string} "Item updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Current period is archived"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /current/{kind}/items/{itemId}/paid [post]
func (h *BucketHandler) MarkItemPaid(c *gin.Context) {
	kind, err := parseKindParam(c, "kind")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := h.orchestrator.MarkPaid(c.Request.Context(), kind, c.Param("itemId"), *req.Paid); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item updated successfully"})
}

// RemoveItem deletes an item from the current period.
// @Summary     Remove an item
// @Description Delete an item from the current period and recompute the total
// @Tags        items
// @Produce     json
// @Param       kind   path string true "Bucket kind"
// @Param       itemId path string true "Item ID"
// @Success     200 {object} object{message=string} "Item deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Current period is archived"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /current/{kind}/items/{itemId} [delete]
func (h *BucketHandler) RemoveItem(c *gin.Context) {
	kind, err := parseKindParam(c, "kind")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.orchestrator.RemoveItem(c.Request.Context(), kind, c.Param("itemId")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

func (h *BucketHandler) bucketParams(c *gin.Context) (period.ID, period.Kind, bool) {
	id, err := parsePeriodParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return period.ID{}, "", false
	}
	kind, err := parseKindParam(c, "kind")
	if err != nil {
		respondWithError(c, err)
		return period.ID{}, "", false
	}
	return id, kind, true
}
