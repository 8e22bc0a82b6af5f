package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/timetable-api/pkg/response"
)

// callerFromContext returns the authenticated caller or writes a 401.
func callerFromContext(c *gin.Context) (models.Caller, bool) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthenticated)
		return models.Caller{}, false
	}
	return *caller, true
}

// idParam parses a positive integer path parameter or writes a 400.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return id, true
}

func bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return false
	}
	return true
}

// failure writes err to the client. Server-side failures are logged here with enough context to trace
// them; the client only sees the generic message.
func failure(c *gin.Context, logger *zap.Logger, action string, caller models.Caller, targetID int64, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError && logger != nil {
		fields := []zap.Field{
			zap.String("action", action),
			zap.Int64("user_id", caller.UserID),
			zap.String("role", string(caller.Role)),
			zap.String("request_id", requestid.Value(c)),
			zap.Error(err),
		}
		if targetID != 0 {
			fields = append(fields, zap.Int64("target_id", targetID))
		}
		logger.Error("request failed", fields...)
	}
	response.Error(c, appErr)
}

func roleMeta(caller models.Caller) map[string]interface{} {
	return map[string]interface{}{"role": caller.Role}
}
