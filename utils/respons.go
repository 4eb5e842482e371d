package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondAppError memetakan AppError ke HTTP status sesuai taksonomi.
// Error provider mentah tidak pernah diteruskan ke caller, hanya di-log.
func RespondAppError(c *gin.Context, err error) {
	code := HTTPStatus(err)
	if appErr, ok := AsAppError(err); ok {
		if appErr.Err != nil {
			ErrorLogger.Printf("%s: %v", appErr.Message, appErr.Err)
		}
		var data interface{}
		if len(appErr.Fields) > 0 {
			data = gin.H{"field_errors": appErr.Fields}
		}
		c.JSON(code, JSONResponse{
			Status:  false,
			Message: appErr.Message,
			Data:    data,
		})
		return
	}
	ErrorLogger.Printf("unexpected error: %v", err)
	c.JSON(http.StatusInternalServerError, JSONResponse{
		Status:  false,
		Message: "internal error",
	})
}
