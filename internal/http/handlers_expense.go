package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgety/internal/core"
)

type expenseResponse struct {
	ID          string     `json:"id"`
	CategoryID  string     `json:"categoryId"`
	CreatedBy   string     `json:"createdBy"`
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	Date        string     `json:"date"`
	RecurringID string     `json:"recurringId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toExpenseResponse(e *core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		CategoryID:  e.CategoryID,
		CreatedBy:   e.CreatedBy,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date.Format(core.DateLayout),
		RecurringID: e.RecurringID,
		CreatedAt:   e.CreatedAt,
	}
}

type createExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Date        string          `json:"date" binding:"required"`
	CategoryID  string          `json:"categoryId" binding:"required"`
}

func (s *Server) handleCreateExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	expense := core.Expense{
		FamilyID:    c.GetString(ctxFamilyID),
		CategoryID:  req.CategoryID,
		CreatedBy:   c.GetString(ctxUserID),
		Description: req.Description,
		Amount:      amount,
		Date:        date,
	}
	if err := s.expenses.Create(c.Request.Context(), &expense); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toExpenseResponse(&expense))
}

func (s *Server) handleListExpenses(c *gin.Context) {
	page, limit, err := parsePagination(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	month := c.Query("month")

	expenses, total, err := s.store.ListExpenses(c.Request.Context(), c.GetString(ctxFamilyID), month, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for i := range expenses {
		out = append(out, toExpenseResponse(&expenses[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "page": page, "limit": limit, "total": total})
}

func (s *Server) handleGetExpense(c *gin.Context) {
	expense, err := s.store.GetExpense(c.Request.Context(), c.GetString(ctxFamilyID), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toExpenseResponse(expense))
}

type updateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
	CategoryID  *string          `json:"categoryId"`
}

func (s *Server) handleUpdateExpense(c *gin.Context) {
	var req updateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	familyID := c.GetString(ctxFamilyID)
	expense, err := s.store.GetExpense(c.Request.Context(), familyID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireOwnership(c, expense.CreatedBy); err != nil {
		respondError(c, err)
		return
	}

	if req.Amount != nil {
		amount, err := core.ParseAmount(*req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		expense.Amount = amount
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			respondError(c, err)
			return
		}
		expense.Date = date
	}
	if req.CategoryID != nil {
		expense.CategoryID = *req.CategoryID
	}

	if err := s.expenses.Update(c.Request.Context(), expense); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) handleDeleteExpense(c *gin.Context) {
	familyID := c.GetString(ctxFamilyID)
	expense, err := s.store.GetExpense(c.Request.Context(), familyID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireOwnership(c, expense.CreatedBy); err != nil {
		respondError(c, err)
		return
	}

	if err := s.expenses.Delete(c.Request.Context(), familyID, expense.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
