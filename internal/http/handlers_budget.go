package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgety/internal/core"
)

type budgetResponse struct {
	ID         string     `json:"id"`
	CategoryID string     `json:"categoryId"`
	Month      string     `json:"month"`
	Amount     core.Money `json:"amount"`
	CreatedBy  string     `json:"createdBy"`
}

func toBudgetResponse(b *core.Budget) budgetResponse {
	return budgetResponse{
		ID:         b.ID,
		CategoryID: b.CategoryID,
		Month:      b.Month,
		Amount:     b.Amount,
		CreatedBy:  b.CreatedBy,
	}
}

type createBudgetRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Month      string          `json:"month" binding:"required"`
	CategoryID string          `json:"categoryId" binding:"required"`
}

func (s *Server) handleCreateBudget(c *gin.Context) {
	var req createBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	budget := core.Budget{
		FamilyID:   c.GetString(ctxFamilyID),
		CategoryID: req.CategoryID,
		Month:      req.Month,
		Amount:     amount,
		CreatedBy:  c.GetString(ctxUserID),
	}
	if err := budget.Validate(); err != nil {
		respondError(c, err)
		return
	}
	if _, err := s.store.GetCategory(c.Request.Context(), budget.FamilyID, budget.CategoryID); err != nil {
		respondError(c, err)
		return
	}
	if err := s.store.CreateBudget(c.Request.Context(), &budget); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBudgetResponse(&budget))
}

func (s *Server) handleListBudgets(c *gin.Context) {
	month := c.Query("month")
	if month != "" {
		if _, _, err := core.MonthRange(month); err != nil {
			respondError(c, err)
			return
		}
	}

	budgets, err := s.store.ListBudgets(c.Request.Context(), c.GetString(ctxFamilyID), month)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]budgetResponse, 0, len(budgets))
	for i := range budgets {
		out = append(out, toBudgetResponse(&budgets[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

type updateBudgetRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

func (s *Server) handleUpdateBudget(c *gin.Context) {
	var req updateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	familyID := c.GetString(ctxFamilyID)
	id := c.Param("id")
	if err := s.store.UpdateBudgetAmount(c.Request.Context(), familyID, id, amount); err != nil {
		respondError(c, err)
		return
	}

	budget, err := s.store.GetBudget(c.Request.Context(), familyID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBudgetResponse(budget))
}

func (s *Server) handleDeleteBudget(c *gin.Context) {
	if err := s.store.DeleteBudget(c.Request.Context(), c.GetString(ctxFamilyID), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
