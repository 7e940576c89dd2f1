package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/wildcare/compliance-engine/internal/audit"
	"github.com/wildcare/compliance-engine/internal/config"
)

const (
	organizationKey = "organization_id"
	actorKey        = "actor_id"

	// OrganizationHeader carries the tenant when token verification is disabled
	OrganizationHeader = "X-Organization-ID"
	actorHeader        = "X-Actor-ID"
)

var errMissingOrganization = errors.New("token carries no organization")

// Tenant resolves the calling organisation. With auth enabled the
// organisation is read from a verified bearer token issued by the identity
// provider; otherwise it is taken from the X-Organization-ID header.
func Tenant(cfg config.AuthConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orgID, actorID string

		if cfg.Enabled {
			var err error
			orgID, actorID, err = tenantFromToken(c.GetHeader("Authorization"), cfg)
			if err != nil {
				logger.Debug("Rejected tenant token", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing bearer token"})
				return
			}
		} else {
			orgID = strings.TrimSpace(c.GetHeader(OrganizationHeader))
			actorID = strings.TrimSpace(c.GetHeader(actorHeader))
			if orgID == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": OrganizationHeader + " header required"})
				return
			}
		}

		c.Set(organizationKey, orgID)
		c.Set(actorKey, actorID)
		c.Request = c.Request.WithContext(audit.WithActor(c.Request.Context(), actorID))
		c.Next()
	}
}

// OrganizationID returns the organisation resolved by Tenant
func OrganizationID(c *gin.Context) string {
	return c.GetString(organizationKey)
}

// ActorID returns the acting user resolved by Tenant, if any
func ActorID(c *gin.Context) string {
	return c.GetString(actorKey)
}

func tenantFromToken(header string, cfg config.AuthConfig) (orgID, actorID string, err error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "", errors.New("invalid authorization header format")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.TokenSecret), nil
	}, opts...)
	if err != nil {
		return "", "", fmt.Errorf("failed to verify token: %w", err)
	}

	orgID, _ = claims[cfg.OrganizationClaim].(string)
	if strings.TrimSpace(orgID) == "" {
		return "", "", errMissingOrganization
	}
	actorID, _ = claims.GetSubject()
	return orgID, actorID, nil
}
