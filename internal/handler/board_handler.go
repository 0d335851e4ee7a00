package handler

import (
	"net/http"
	"strconv"
	"strings"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	boardRepo *repository.BoardRepository
}

func NewBoardHandler(boardRepo *repository.BoardRepository) *BoardHandler {
	return &BoardHandler{
		boardRepo: boardRepo,
	}
}

type CreateBoardRequest struct {
	Name string `json:"name" binding:"required"`
}

type BoardResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Create creates a new board for the authenticated user
func (h *BoardHandler) Create(c *gin.Context) {
	// Get user ID from context (set by auth middleware)
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ownerID, ok := userID.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board name (1-100 characters)."})
		return
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < 1 || len(name) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board name (1-100 characters)."})
		return
	}

	board := &model.Board{
		Name:        name,
		OwnerUserID: ownerID,
	}

	if err := h.boardRepo.Create(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}

	c.JSON(http.StatusCreated, BoardResponse{ID: board.ID, Name: board.Name})
}

// GetAll lists the authenticated user's boards, newest first
func (h *BoardHandler) GetAll(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ownerID, ok := userID.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	boards, err := h.boardRepo.GetOwned(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch boards"})
		return
	}

	response := make([]BoardResponse, 0, len(boards))
	for _, b := range boards {
		response = append(response, BoardResponse{ID: b.ID, Name: b.Name})
	}

	c.JSON(http.StatusOK, response)
}

// GetDetails returns a board's public details. Anyone with the board link can
// call this; knowing the ID is the only requirement.
func (h *BoardHandler) GetDetails(c *gin.Context) {
	boardID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Board ID format"})
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), uint(boardID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error fetching board details"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	c.JSON(http.StatusOK, BoardResponse{ID: board.ID, Name: board.Name})
}

// Delete removes a board owned by the authenticated user. Tasks on the board
// go with it via the schema-level cascade.
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ownerID, ok := userID.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	boardID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Board ID format"})
		return
	}

	deleted, err := h.boardRepo.DeleteOwned(c.Request.Context(), uint(boardID), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
		return
	}
	if deleted == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
