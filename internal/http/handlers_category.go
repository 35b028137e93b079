package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgety/internal/core"
)

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	category := core.Category{FamilyID: c.GetString(ctxFamilyID), Name: req.Name}
	if err := category.Validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := s.store.CreateCategory(c.Request.Context(), &category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, categoryResponse{ID: category.ID, Name: category.Name})
}

func (s *Server) handleListCategories(c *gin.Context) {
	categories, err := s.store.ListCategories(c.Request.Context(), c.GetString(ctxFamilyID))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, categoryResponse{ID: cat.ID, Name: cat.Name})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := (core.Category{Name: req.Name}).Validate(); err != nil {
		respondError(c, err)
		return
	}

	familyID := c.GetString(ctxFamilyID)
	id := c.Param("id")
	if err := s.store.UpdateCategoryName(c.Request.Context(), familyID, id, req.Name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categoryResponse{ID: id, Name: req.Name})
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	if err := s.store.DeleteCategory(c.Request.Context(), c.GetString(ctxFamilyID), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
