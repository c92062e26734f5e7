package server

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"

	contextUserIDKey   = "user_id"
	contextUserNameKey = "user_name"
	contextRoleKey     = "user_role"
)

// RequestID propagates the caller's request id, minting one when absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Set(HeaderRequestID, rid)
		c.Next()
	}
}

// identity is the caller extracted from a bearer token.
type identity struct {
	UserID snowflake.ID
	Name   string
	Role   string
}

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ident, err := s.parseToken(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextUserIDKey, ident.UserID)
		c.Set(contextUserNameKey, ident.Name)
		c.Set(contextRoleKey, ident.Role)
		c.Next()
	}
}

func (s *Server) parseToken(raw string) (*identity, error) {
	if raw == "" || s.cfg.AuthJWTSecret == "" {
		return nil, ErrUnauthorized
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.cfg.AuthJWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	sub, _ := claims["user_id"].(string)
	if sub == "" {
		sub, _ = claims["sub"].(string)
	}
	userID, err := snowflake.ParseString(sub)
	if err != nil {
		return nil, ErrUnauthorized
	}

	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		role = "customer"
	}

	return &identity{UserID: userID, Name: name, Role: role}, nil
}

func currentIdentity(c *gin.Context) identity {
	ident := identity{}
	if v, ok := c.Get(contextUserIDKey); ok {
		if id, ok := v.(snowflake.ID); ok {
			ident.UserID = id
		}
	}
	if v, ok := c.Get(contextUserNameKey); ok {
		ident.Name, _ = v.(string)
	}
	if v, ok := c.Get(contextRoleKey); ok {
		ident.Role, _ = v.(string)
	}
	return ident
}
