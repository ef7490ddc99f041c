// Package problem writes RFC 7807 style error bodies.
package problem

import "github.com/gin-gonic/gin"

const ContentType = "application/problem+json"

// Details is the error body returned by every endpoint.
type Details struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// Abort writes the problem and stops the handler chain.
func Abort(c *gin.Context, status int, title, detail string) {
	c.Header("Content-Type", ContentType)
	c.AbortWithStatusJSON(status, Details{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
