package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/familylog/internal/domain/auth"
	apperrors "github.com/yanqian/familylog/pkg/errors"
)

// authMiddleware accepts access tokens and, when allowDevice is set, the device token.
func authMiddleware(svc auth.Service, allowDevice bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authorization header", nil))
			return
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			status := http.StatusForbidden
			code := "invalid_token"
			if !apperrors.IsCode(err, apperrors.CodeInvalidToken) {
				status = http.StatusInternalServerError
				code = "auth_failed"
			}
			abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
			return
		}
		if claims.TokenType == auth.TokenTypeDevice && !allowDevice {
			abortWithError(c, NewHTTPError(http.StatusForbidden, "invalid_token", "device token cannot call this endpoint", nil))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}
