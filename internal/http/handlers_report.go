package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// monthParam reads ?month=YYYY-MM, defaulting to the current month.
func monthParam(c *gin.Context) string {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	return month
}

func (s *Server) handleMemberSpending(c *gin.Context) {
	topN, _ := strconv.Atoi(c.DefaultQuery("top", "3"))
	report, err := s.reports.MemberSpending(c.Request.Context(), c.GetString(ctxFamilyID), monthParam(c), topN)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleBudgetUtilization(c *gin.Context) {
	report, err := s.reports.BudgetUtilization(c.Request.Context(), c.GetString(ctxFamilyID), monthParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleCategorySplit(c *gin.Context) {
	report, err := s.reports.CategorySplit(c.Request.Context(), c.GetString(ctxFamilyID), monthParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleDailySpending(c *gin.Context) {
	month := monthParam(c)
	days, err := s.reports.DailySpending(c.Request.Context(), c.GetString(ctxFamilyID), month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "days": days})
}

func (s *Server) handleMonthlyTrend(c *gin.Context) {
	months, err := strconv.Atoi(c.DefaultQuery("months", "6"))
	if err != nil {
		badRequest(c, "invalid months")
		return
	}
	trend, err := s.reports.MonthlyTrend(c.Request.Context(), c.GetString(ctxFamilyID), months, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": trend})
}

func (s *Server) handleTopExpenses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	month := monthParam(c)

	expenses, err := s.reports.TopExpenses(c.Request.Context(), c.GetString(ctxFamilyID), month, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]expenseResponse, 0, len(expenses))
	for i := range expenses {
		out = append(out, toExpenseResponse(&expenses[i]))
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "expenses": out})
}

// handleExportReport pushes a month's category split to the configured
// Google Spreadsheet. 503 when the deployment has no exporter configured.
func (s *Server) handleExportReport(c *gin.Context) {
	if s.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report export not configured"})
		return
	}

	familyID := c.GetString(ctxFamilyID)
	month := monthParam(c)

	family, err := s.store.GetFamily(c.Request.Context(), familyID)
	if err != nil {
		respondError(c, err)
		return
	}
	report, err := s.reports.CategorySplit(c.Request.Context(), familyID, month)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.exporter.ExportCategorySplit(c.Request.Context(), family.Name, report); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "exported": len(report.Categories)})
}
