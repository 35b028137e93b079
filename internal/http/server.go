// Package http is the REST boundary: gin router, auth middleware, and the
// JSON handlers for every resource.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgety/internal/auth"
	"budgety/internal/cache"
	"budgety/internal/core"
	"budgety/internal/export"
	"budgety/internal/services"
	"budgety/internal/storage"
)

type Server struct {
	store     *storage.Repository
	tokens    *auth.TokenManager
	authn     *auth.Authenticator
	families  *services.FamilyService
	expenses  *services.ExpenseService
	recurring *services.RecurringService
	reports   *services.ReportService
	exporter  *export.SheetsExporter
	roles     *cache.LRU[core.Role]
}

type Options struct {
	Store     *storage.Repository
	Tokens    *auth.TokenManager
	Authn     *auth.Authenticator
	Families  *services.FamilyService
	Expenses  *services.ExpenseService
	Recurring *services.RecurringService
	Reports   *services.ReportService
	Exporter  *export.SheetsExporter // nil when export is not configured
	Roles     *cache.LRU[core.Role]
}

func NewServer(opts Options) *Server {
	return &Server{
		store:     opts.Store,
		tokens:    opts.Tokens,
		authn:     opts.Authn,
		families:  opts.Families,
		expenses:  opts.Expenses,
		recurring: opts.Recurring,
		reports:   opts.Reports,
		exporter:  opts.Exporter,
		roles:     opts.Roles,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", s.handleHealthz)
	r.GET("/readyz", s.handleReadyz)

	r.POST("/auth/register", s.handleRegister)
	r.POST("/auth/login", s.handleLogin)

	authed := r.Group("")
	authed.Use(s.authenticate())

	authed.GET("/me", s.handleMe)
	authed.POST("/families", s.handleCreateFamily)
	authed.GET("/families", s.handleListFamilies)

	// Everything below is scoped to one family; the guard resolves the
	// caller's role and hides families the caller is not a member of.
	family := authed.Group("/families/:familyId")
	family.Use(s.familyGuard())

	family.GET("", s.handleGetFamily)
	family.PATCH("", requireRole(core.RoleAdmin), s.handleUpdateFamily)
	family.DELETE("", requireRole(core.RoleAdmin), s.handleDeleteFamily)

	family.GET("/members", s.handleListMembers)
	family.POST("/members", requireRole(core.RoleAdmin), s.handleAddMember)
	family.PATCH("/members/:userId", requireRole(core.RoleAdmin), s.handleUpdateMemberRole)
	family.DELETE("/members/:userId", requireRole(core.RoleAdmin), s.handleRemoveMember)

	family.POST("/categories", requireRole(core.RoleAdmin), s.handleCreateCategory)
	family.GET("/categories", s.handleListCategories)
	family.PATCH("/categories/:id", requireRole(core.RoleAdmin), s.handleUpdateCategory)
	family.DELETE("/categories/:id", requireRole(core.RoleAdmin), s.handleDeleteCategory)

	family.POST("/expenses", s.handleCreateExpense)
	family.GET("/expenses", s.handleListExpenses)
	family.GET("/expenses/:id", s.handleGetExpense)
	family.PATCH("/expenses/:id", s.handleUpdateExpense)
	family.DELETE("/expenses/:id", s.handleDeleteExpense)

	family.POST("/budgets", requireRole(core.RoleAdmin), s.handleCreateBudget)
	family.GET("/budgets", s.handleListBudgets)
	family.PATCH("/budgets/:id", requireRole(core.RoleAdmin), s.handleUpdateBudget)
	family.DELETE("/budgets/:id", requireRole(core.RoleAdmin), s.handleDeleteBudget)

	family.POST("/recurring-expenses", s.handleCreateRecurring)
	family.GET("/recurring-expenses", s.handleListRecurring)
	family.PATCH("/recurring-expenses/:id", s.handleUpdateRecurring)
	family.DELETE("/recurring-expenses/:id", s.handleDeleteRecurring)

	family.GET("/reports/member-spending", s.handleMemberSpending)
	family.GET("/reports/budget-utilization", s.handleBudgetUtilization)
	family.GET("/reports/category-split", s.handleCategorySplit)
	family.GET("/reports/daily-spending", s.handleDailySpending)
	family.GET("/reports/monthly-trend", s.handleMonthlyTrend)
	family.GET("/reports/top-expenses", s.handleTopExpenses)
	family.POST("/reports/export", s.handleExportReport)

	family.GET("/notifications", s.handleListNotifications)

	return r
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReadyz(c *gin.Context) {
	if err := s.store.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
