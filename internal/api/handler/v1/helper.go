package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schradoc/rgs-silent-auction-sub000/internal/api/handler/v1/response"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/api/middleware"
)

// HandleHealthcheck godoc
// @Summary      Healthcheck
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getBidderID pulls the authenticated bidder's id set by the session
// middleware.
func getBidderID(ctx *gin.Context) (uint, *response.Err) {
	value, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return 0, &response.Err{
			StatusCode: http.StatusUnauthorized,
			ErrorMsg:   "missing session identity",
		}
	}

	bidderID, ok := value.(uint)
	if !ok || bidderID == 0 {
		return 0, ErrInvalidSession()
	}

	return bidderID, nil
}

func ErrInvalidSession() *response.Err {
	return response.ErrBadRequest(errors.New("invalid session identity"))
}
