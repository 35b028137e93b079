package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgety/internal/core"
)

type recurringResponse struct {
	ID          string         `json:"id"`
	CategoryID  string         `json:"categoryId"`
	CreatedBy   string         `json:"createdBy"`
	Description string         `json:"description"`
	Amount      core.Money     `json:"amount"`
	Frequency   core.Frequency `json:"frequency"`
	StartDate   string         `json:"startDate"`
	EndDate     *string        `json:"endDate"`
	NextDueDate string         `json:"nextDueDate"`
	IsActive    bool           `json:"isActive"`
}

func toRecurringResponse(re *core.RecurringExpense) recurringResponse {
	resp := recurringResponse{
		ID:          re.ID,
		CategoryID:  re.CategoryID,
		CreatedBy:   re.CreatedBy,
		Description: re.Description,
		Amount:      re.Amount,
		Frequency:   re.Frequency,
		StartDate:   re.StartDate.Format(core.DateLayout),
		NextDueDate: re.NextDueDate.Format(core.DateLayout),
		IsActive:    re.IsActive,
	}
	if re.EndDate != nil {
		end := re.EndDate.Format(core.DateLayout)
		resp.EndDate = &end
	}
	return resp
}

type createRecurringRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Frequency   string          `json:"frequency" binding:"required"`
	StartDate   string          `json:"startDate" binding:"required"`
	EndDate     *string         `json:"endDate"`
	CategoryID  string          `json:"categoryId" binding:"required"`
}

func (s *Server) handleCreateRecurring(c *gin.Context) {
	var req createRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	frequency, err := core.ParseFrequency(req.Frequency)
	if err != nil {
		respondError(c, err)
		return
	}
	startDate, err := core.ParseDate(req.StartDate)
	if err != nil {
		respondError(c, err)
		return
	}

	re := core.RecurringExpense{
		FamilyID:    c.GetString(ctxFamilyID),
		CategoryID:  req.CategoryID,
		CreatedBy:   c.GetString(ctxUserID),
		Description: req.Description,
		Amount:      amount,
		Frequency:   frequency,
		StartDate:   startDate,
	}
	if req.EndDate != nil {
		endDate, err := core.ParseDate(*req.EndDate)
		if err != nil {
			respondError(c, err)
			return
		}
		re.EndDate = &endDate
	}

	if err := s.recurring.Create(c.Request.Context(), &re); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecurringResponse(&re))
}

func (s *Server) handleListRecurring(c *gin.Context) {
	page, limit, err := parsePagination(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	templates, total, err := s.store.ListRecurringExpenses(c.Request.Context(), c.GetString(ctxFamilyID), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]recurringResponse, 0, len(templates))
	for i := range templates {
		out = append(out, toRecurringResponse(&templates[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "page": page, "limit": limit, "total": total})
}

type updateRecurringRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Frequency   *string          `json:"frequency"`
	EndDate     *string          `json:"endDate"`
	CategoryID  *string          `json:"categoryId"`
	IsActive    *bool            `json:"isActive"`
}

func (s *Server) handleUpdateRecurring(c *gin.Context) {
	var req updateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	// Parse everything up front so a half-valid request mutates nothing.
	var amount *core.Money
	if req.Amount != nil {
		a, err := core.ParseAmount(*req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		amount = &a
	}
	var frequency *core.Frequency
	if req.Frequency != nil {
		f, err := core.ParseFrequency(*req.Frequency)
		if err != nil {
			respondError(c, err)
			return
		}
		frequency = &f
	}
	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		d, err := core.ParseDate(*req.EndDate)
		if err != nil {
			respondError(c, err)
			return
		}
		endDate = &d
	}

	familyID := c.GetString(ctxFamilyID)
	id := c.Param("id")

	existing, err := s.store.GetRecurringExpense(c.Request.Context(), familyID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireOwnership(c, existing.CreatedBy); err != nil {
		respondError(c, err)
		return
	}

	updated, err := s.recurring.Update(c.Request.Context(), familyID, id, func(re *core.RecurringExpense) {
		if amount != nil {
			re.Amount = *amount
		}
		if req.Description != nil {
			re.Description = *req.Description
		}
		if frequency != nil {
			re.Frequency = *frequency
		}
		if req.EndDate != nil {
			// An explicit empty string clears the end date.
			re.EndDate = endDate
		}
		if req.CategoryID != nil {
			re.CategoryID = *req.CategoryID
		}
		if req.IsActive != nil {
			re.IsActive = *req.IsActive
		}
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecurringResponse(updated))
}

func (s *Server) handleDeleteRecurring(c *gin.Context) {
	familyID := c.GetString(ctxFamilyID)
	id := c.Param("id")

	existing, err := s.store.GetRecurringExpense(c.Request.Context(), familyID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireOwnership(c, existing.CreatedBy); err != nil {
		respondError(c, err)
		return
	}

	if err := s.recurring.Delete(c.Request.Context(), familyID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
