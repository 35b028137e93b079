package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"budgety/internal/core"
)

type familyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func toFamilyResponse(f *core.Family) familyResponse {
	return familyResponse{ID: f.ID, Name: f.Name, CreatedBy: f.CreatedBy, CreatedAt: f.CreatedAt}
}

type memberResponse struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     core.Role `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type createFamilyRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) handleCreateFamily(c *gin.Context) {
	var req createFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	family := core.Family{Name: req.Name, CreatedBy: c.GetString(ctxUserID)}
	if err := s.families.Create(c.Request.Context(), &family); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFamilyResponse(&family))
}

func (s *Server) handleListFamilies(c *gin.Context) {
	families, err := s.store.ListFamiliesForUser(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]familyResponse, 0, len(families))
	for i := range families {
		out = append(out, toFamilyResponse(&families[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) handleGetFamily(c *gin.Context) {
	family, err := s.store.GetFamily(c.Request.Context(), c.GetString(ctxFamilyID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFamilyResponse(family))
}

type updateFamilyRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) handleUpdateFamily(c *gin.Context) {
	var req updateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	familyID := c.GetString(ctxFamilyID)
	if err := (core.Family{Name: req.Name}).Validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := s.store.UpdateFamilyName(c.Request.Context(), familyID, req.Name); err != nil {
		respondError(c, err)
		return
	}

	family, err := s.store.GetFamily(c.Request.Context(), familyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFamilyResponse(family))
}

func (s *Server) handleDeleteFamily(c *gin.Context) {
	if err := s.store.DeleteFamily(c.Request.Context(), c.GetString(ctxFamilyID)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListMembers(c *gin.Context) {
	members, err := s.store.ListMembers(c.Request.Context(), c.GetString(ctxFamilyID))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{
			UserID:   m.UserID,
			Name:     m.Name,
			Email:    m.Email,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

type addMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

func (s *Server) handleAddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	role := core.RoleMember
	if req.Role != "" {
		parsed, err := core.ParseRole(req.Role)
		if err != nil {
			respondError(c, err)
			return
		}
		role = parsed
	}

	familyID := c.GetString(ctxFamilyID)
	user, err := s.families.AddMemberByEmail(c.Request.Context(), familyID, req.Email, role, c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, memberResponse{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     role,
		JoinedAt: time.Now(),
	})
}

type updateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (s *Server) handleUpdateMemberRole(c *gin.Context) {
	var req updateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	role, err := core.ParseRole(req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	familyID := c.GetString(ctxFamilyID)
	userID := c.Param("userId")
	if err := s.store.UpdateMemberRole(c.Request.Context(), familyID, userID, role); err != nil {
		respondError(c, err)
		return
	}
	s.invalidateRole(familyID, userID)

	c.JSON(http.StatusOK, gin.H{"userId": userID, "role": role})
}

func (s *Server) handleRemoveMember(c *gin.Context) {
	familyID := c.GetString(ctxFamilyID)
	userID := c.Param("userId")
	if err := s.store.RemoveMember(c.Request.Context(), familyID, userID); err != nil {
		respondError(c, err)
		return
	}
	s.invalidateRole(familyID, userID)
	c.Status(http.StatusNoContent)
}
