package handlers

import (
	"net/http"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/logger"
	"auction-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindBidTooLow, apperrors.KindAuctionNotBiddable, apperrors.KindAlreadyDecided, apperrors.KindPaymentNotConfirmed:
		return http.StatusConflict
	case apperrors.KindInvalidSignature, apperrors.KindAuthenticationRequired:
		return http.StatusUnauthorized
	case apperrors.KindUpstreamProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Internal failures are logged
// and answered without their message.
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", map[string]any{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		c.JSON(status, models.ErrorResponse{Error: string(apperrors.KindInternal), Message: "internal server error"})
		return
	}
	if status == http.StatusBadGateway {
		logger.Warn("upstream provider failed", map[string]any{"path": c.FullPath(), "error": err.Error()})
	}
	c.JSON(status, models.ErrorResponse{Error: string(kind), Message: apperrors.MessageOf(err)})
}

func auctionIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("auction_id"))
	if err != nil {
		respondError(c, apperrors.Validation("auction_id must be a uuid"))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, apperrors.Validation("invalid request body: %v", err))
		return false
	}
	return true
}
