package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"premiumflow/internal/premium"
	"premiumflow/logger"
	"premiumflow/models"
)

// handlePremium runs the full lookup pipeline: decode, validate, resolve.
// Validation failures return before any upstream call is made.
func (s *Server) handlePremium(c *gin.Context) {
	log := s.log.WithComponent("api_server").WithFields(logger.Fields{
		"request_id": c.GetString("request_id"),
	})

	var req models.PremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.WithError(err).Warn("failed to decode premium request")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch premium"})
		return
	}

	query, err := premium.ValidateRequest(req)
	if err != nil {
		s.writePremiumError(c, log, err)
		return
	}

	result, err := s.resolver.Resolve(c.Request.Context(), query)
	if err != nil {
		s.writePremiumError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) writePremiumError(c *gin.Context, log *logger.Entry, err error) {
	var notFound *premium.ExpiryNotFoundError

	switch {
	case errors.Is(err, premium.ErrInvalidOptionType):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid optionType"})
	case errors.Is(err, premium.ErrInvalidDateFormat):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid expiryDate"})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:             "No data for expiry " + notFound.Requested,
			AvailableExpiries: notFound.Available,
		})
	case errors.Is(err, premium.ErrNoMatchingStrike):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "No matching strike found"})
	default:
		log.WithError(err).Error("premium lookup failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch premium"})
	}
}

// handleExpiries returns the upstream expiry labels for the configured symbol.
func (s *Server) handleExpiries(c *gin.Context) {
	log := s.log.WithComponent("api_server").WithFields(logger.Fields{
		"request_id": c.GetString("request_id"),
	})

	chain, err := s.fetcher.FetchChain(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("expiry listing failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch expiries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":      s.symbol,
		"expiryDates": chain.Records.ExpiryDates,
	})
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
