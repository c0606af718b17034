// Package response renders the API envelope every endpoint speaks:
// {"success":true,"data":...} on success and
// {"success":false,"error":{"code","message"}} on failure. Handlers never
// write JSON bodies directly.
package response

import "github.com/gin-gonic/gin"

// Success writes the payload wrapped in the success envelope.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// Error writes a machine-readable error code plus a human-readable message.
// Codes are stable identifiers clients switch on; messages are not.
func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// ErrorWithDetails is Error with an extra free-form details field, used for
// per-field validation feedback.
func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
