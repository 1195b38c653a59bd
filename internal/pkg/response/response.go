package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Page describes a limit/offset window over a list response.
type Page struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// Paginated wraps items under key together with the window that produced
// them and the number of matches across all pages.
func Paginated(c *gin.Context, key string, items any, total int64, limit, offset int) {
	Success(c, http.StatusOK, gin.H{
		key:    items,
		"page": Page{Limit: limit, Offset: offset, Total: total},
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

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
