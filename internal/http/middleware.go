package http

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"budgety/internal/auth"
	"budgety/internal/core"
	"budgety/internal/metrics"
)

// Context keys set by the middleware chain.
const (
	ctxUserID   = "userID"
	ctxFamilyID = "familyID"
	ctxRole     = "role"
)

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, strconv.Itoa(status)).Inc()

		slog.InfoContext(c.Request.Context(), "Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// authenticate resolves the bearer token to a user id. Downstream handlers
// only ever see the user id, never the token.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondError(c, auth.ErrMissingToken)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			respondError(c, auth.ErrInvalidToken)
			return
		}

		claims, err := s.tokens.Validate(token)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Next()
	}
}

// familyGuard resolves the caller's role in the :familyId family. A caller
// who is not a member gets 404, the same as a family that does not exist.
// Lookups go through a short TTL cache so every request in a burst does not
// hit the membership table.
func (s *Server) familyGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		familyID := c.Param("familyId")
		userID := c.GetString(ctxUserID)

		role, err := s.memberRole(c, familyID, userID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(ctxFamilyID, familyID)
		c.Set(ctxRole, role)
		c.Next()
	}
}

func (s *Server) memberRole(c *gin.Context, familyID, userID string) (core.Role, error) {
	key := familyID + ":" + userID
	if s.roles != nil {
		if role, ok := s.roles.Get(key); ok {
			return role, nil
		}
	}

	role, err := s.store.GetMemberRole(c.Request.Context(), familyID, userID)
	if err != nil {
		return 0, err
	}
	if s.roles != nil {
		s.roles.Set(key, role)
	}
	return role, nil
}

// invalidateRole drops a cached (family, user) role after a membership
// mutation so the change is visible immediately, not after cache expiry.
func (s *Server) invalidateRole(familyID, userID string) {
	if s.roles != nil {
		s.roles.Delete(familyID + ":" + userID)
	}
}

func requireRole(min core.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := callerRole(c)
		if !role.HasAtLeast(min) {
			respondError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func callerRole(c *gin.Context) core.Role {
	v, ok := c.Get(ctxRole)
	if !ok {
		return 0
	}
	role, _ := v.(core.Role)
	return role
}

// requireOwnership enforces the creator-or-admin rule on mutations.
func requireOwnership(c *gin.Context, createdBy string) error {
	if createdBy == c.GetString(ctxUserID) || callerRole(c).HasAtLeast(core.RoleAdmin) {
		return nil
	}
	return ErrForbidden
}

// parsePagination reads ?page and ?limit with sane bounds.
func parsePagination(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, errors.New("invalid page")
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		return 0, 0, errors.New("invalid limit")
	}
	return page, limit, nil
}
