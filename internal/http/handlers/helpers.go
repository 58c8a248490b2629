package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/techgeo/backend/internal/dto"
	"github.com/techgeo/backend/internal/http/middleware"
	"github.com/techgeo/backend/internal/pkg/apperror"
)

var errUserNotFound = errors.New("пользователь не найден в контексте")

// currentUserID извлекает userID аутентифицированного пользователя.
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return uuid.Nil, errUserNotFound
	}
	return principal.UserID, nil
}

// respondError переводит ошибку сервиса в HTTP-ответ. AppError несёт свой
// статус и сообщение, всё остальное уходит в ErrorHandler и маскируется.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
			Error: appErr.Message,
			Code:  string(appErr.Code),
		})
		return
	}
	_ = c.Error(err)
}

// parseIDParam читает UUID из path-параметра id.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "неверный идентификатор"})
		return uuid.Nil, false
	}
	return id, true
}
