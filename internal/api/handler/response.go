package handler

import "github.com/gin-gonic/gin"

// Every endpoint answers with the same envelope:
// {"error": bool, "message"?: string, "data"?: any}.

func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"error": false}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": true, "message": message})
}
