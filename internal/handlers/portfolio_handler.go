package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-tracker/internal/ledger"
	"portfolio-tracker/internal/services"
)

type PortfolioHandler struct {
	portfolioService *services.PortfolioService
}

func NewPortfolioHandler(portfolioService *services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// SettingsRequest replaces the portfolio settings.
type SettingsRequest struct {
	StartingAmount *float64 `json:"startingAmount"`
}

// WriteRequest is the combined write body accepted on POST /api/portfolio.
type WriteRequest struct {
	Type string          `json:"type" binding:"required,oneof=entry portfolio"`
	Data json.RawMessage `json:"data" binding:"required"`
}

// GetPortfolio returns the aggregated view of the whole ledger.
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	view, err := h.portfolioService.View(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch portfolio: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PortfolioHandler) AddEntry(c *gin.Context) {
	var req ledger.EntryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id, ok := h.addEntry(c, req)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *PortfolioHandler) ReplaceSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if !h.replaceSettings(c, req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true})
}

// Write accepts {"type": "entry"|"portfolio", "data": {...}} and dispatches
// to the matching write. Neither returns a view; clients re-read.
func (h *PortfolioHandler) Write(c *gin.Context) {
	var req WriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	switch req.Type {
	case "entry":
		var in ledger.EntryInput
		if err := json.Unmarshal(req.Data, &in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry data: " + err.Error()})
			return
		}
		id, ok := h.addEntry(c, in)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"acknowledged": true, "insertedId": id})

	case "portfolio":
		var in SettingsRequest
		if err := json.Unmarshal(req.Data, &in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid portfolio data: " + err.Error()})
			return
		}
		if !h.replaceSettings(c, in) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"acknowledged": true})
	}
}

func (h *PortfolioHandler) addEntry(c *gin.Context, in ledger.EntryInput) (string, bool) {
	id, err := h.portfolioService.AddEntry(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return "", false
	}
	return id, true
}

func (h *PortfolioHandler) replaceSettings(c *gin.Context, in SettingsRequest) bool {
	if err := h.portfolioService.ReplaceSettings(c.Request.Context(), in.StartingAmount); err != nil {
		writeError(c, err)
		return false
	}
	return true
}

// writeError maps validation failures to 400 and everything else to 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidEntry), errors.Is(err, services.ErrInvalidSettings):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
