package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/BBQAnChang/SBHomework/pkg/config"
	"github.com/BBQAnChang/SBHomework/pkg/logger"
)

const APIKeyHeader = "X-API-Key"

func APIKeyAuth(cfg *config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.APIServer.Auth.Enabled {
			c.Next()
			return
		}

		apiKey := c.GetHeader(APIKeyHeader)

		if apiKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "API key required",
				"hint":  "Add X-API-Key header",
			})
			c.Abort()
			return
		}

		valid := false
		for _, validKey := range cfg.APIServer.Auth.APIKeys {
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(validKey)) == 1 {
				valid = true
				break
			}
		}

		if !valid {
			logger.Logger(c.Request.Context()).WithFields(logrus.Fields{
				"path":   c.FullPath(),
				"client": c.ClientIP(),
			}).Warn("API request rejected: invalid API key")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			c.Abort()
			return
		}

		logger.Logger(c.Request.Context()).Debug("API request authenticated")
		c.Next()
	}
}
