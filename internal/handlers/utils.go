package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// stripJSONExtension removes .json extension from a parameter if present
func stripJSONExtension(c *gin.Context, paramName string) string {
	value := c.Param(paramName)
	if !strings.HasSuffix(value, ".json") {
		return value
	}
	value = strings.TrimSuffix(value, ".json")
	for i, param := range c.Params {
		if param.Key == paramName {
			c.Params[i].Value = value
			break
		}
	}
	return value
}
