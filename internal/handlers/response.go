package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"github.com/projectbuddy/projectbuddy/internal/logger"
	"github.com/projectbuddy/projectbuddy/internal/types"
	"github.com/projectbuddy/projectbuddy/internal/utils"
)

func respond(ctx *gin.Context, status int, message string, data interface{}) {
	ctx.JSON(status, types.Response{Success: true, Message: message, Data: data})
}

func respondPage(ctx *gin.Context, message string, data interface{}, total int64, page feed.Page) {
	ctx.JSON(http.StatusOK, types.Response{
		Success: true,
		Message: message,
		Data:    data,
		Pagination: &types.Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      total,
			TotalPages: page.TotalPages(total),
		},
	})
}

// respondError maps err to its status code. Only unexpected failures are
// logged; their details never reach the client.
func respondError(ctx *gin.Context, err error) {
	status := apperr.Status(err)

	if status >= http.StatusInternalServerError {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"method": ctx.Request.Method,
			"route":  ctx.FullPath(),
		}).Error("request failed")
	} else {
		logger.Log.WithError(err).Debug("request rejected")
	}

	ctx.JSON(status, types.Fail(apperr.PublicMessage(err)))
}

func bindJSON(ctx *gin.Context, dst interface{}) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		respondError(ctx, apperr.Validation(validationMessage(err)))
		return false
	}
	return true
}

func bindQuery(ctx *gin.Context, dst interface{}) bool {
	if err := ctx.ShouldBindQuery(dst); err != nil {
		respondError(ctx, apperr.Validation(validationMessage(err)))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}

	return strings.Join(messages, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s has an invalid value", field)
	}
}

// userID returns the authenticated caller, answering 401 when there is none.
func userID(ctx *gin.Context) (string, bool) {
	id, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, err)
		return "", false
	}

	return id, true
}

func pageOf(ctx *gin.Context) feed.Page {
	return feed.ParsePage(ctx.Query("page"), ctx.Query("limit"))
}
