package middleware

import (
	"strings"

	"shared-memo-pad/internal/errors"

	"github.com/gin-gonic/gin"
)

// CredentialAuth extracts the Bearer credential and stores it on the context.
//
// The credential is a tenant partition key, not an identity: any non-empty
// string is accepted, and the first use of a new credential simply starts an
// empty tenant. There is no registration step and no verification against a
// stored secret. This is capability-based access control inherited from the
// data model, so no hashing or strength check belongs here.
func CredentialAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			ctx.Error(errors.Unauthorized("Authorization is not found!", nil))
			ctx.Abort()
			return
		}

		credential := strings.TrimPrefix(authHeader, "Bearer ")
		if credential == authHeader || credential == "" {
			ctx.Error(errors.Unauthorized("Malformed Authorization header!", nil))
			ctx.Abort()
			return
		}

		ctx.Set("credential", credential)
		ctx.Next()
	}
}
