package response

import (
	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorDetail carries field-level messages and, for page forms, the
// submitted values so the client can redisplay them.
type ErrorDetail struct {
	Fields map[string]string `json:"fields,omitempty"`
	Form   interface{}       `json:"form,omitempty"`
}

// FormPage describes a page form: its name, where it posts and the values to prefill
type FormPage struct {
	Name   string            `json:"name"`
	Action string            `json:"action"`
	Method string            `json:"method"`
	Fields []string          `json:"fields"`
	Values interface{}       `json:"values,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func requestID(c *gin.Context) string {
	reqID, _ := c.Get("RequestID")
	idStr, _ := reqID.(string) // Safe type assertion
	return idStr
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: requestID(c),
	})
}

// Form renders a page form, with errors when it is being redisplayed
func Form(c *gin.Context, code int, message string, form FormPage) {
	c.JSON(code, Response{
		Success:   code < 400,
		Message:   message,
		Data:      form,
		RequestID: requestID(c),
	})
}
