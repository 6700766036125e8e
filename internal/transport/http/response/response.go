package response

import "github.com/gin-gonic/gin"

// Detail writes the error body used on every non-2xx response. Clients
// surface the detail string verbatim.
func Detail(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}

func OK(c *gin.Context, body interface{}) {
	c.JSON(200, body)
}
