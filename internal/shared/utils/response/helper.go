package response

import "github.com/gin-gonic/gin"

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// AbortJSON writes the response and stops the handler chain
func AbortJSON(c *gin.Context, code int, message string, errors interface{}) {
	RespondJSON(c, StatusError, code, message, nil, errors)
	c.Abort()
}
