package response

import "github.com/gin-gonic/gin"

// Envelope is the mutation response shape the legacy frontend expects:
// a human-readable message plus the created/updated entity.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK writes the payload as-is. List endpoints return bare arrays, not an
// envelope.
func OK(c *gin.Context, data any) {
	c.JSON(200, data)
}

func Success(c *gin.Context, message string, data any) {
	c.JSON(200, Envelope{
		Message: message,
		Data:    data,
	})
}

// Fail writes a structured error payload. Callers log the underlying error
// themselves; only the generic message crosses the wire.
func Fail(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Envelope{
		Message: message,
	})
}
