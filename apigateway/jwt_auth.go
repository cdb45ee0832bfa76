package gateway

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/lifund/temigrate/apperr"
)

// JWTAuth provides an encapsulation for jwt auth on the migration server.
type JWTAuth struct {
	Key []byte
}

// TokenClaims is the temigrate standard claim: the actor a token was
// issued to.
type TokenClaims struct {
	Actor string `json:"actor"`
	jwt.StandardClaims
}

const tokenLifetime = 3 * time.Hour

// GenerateJWT issues an HS256 token for the given actor.
func (j *JWTAuth) GenerateJWT(actor string) (string, error) {
	if len(j.Key) == 0 {
		return "", errors.New("empty jwt key")
	}
	now := time.Now()
	claims := TokenClaims{
		Actor: actor,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(tokenLifetime).Unix(),
			Issuer:    "temigrate",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Key)
}

// VerifyJWT validates a token string and returns its claims.
func (j *JWTAuth) VerifyJWT(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Key, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("token is invalid")
}

const bearerPrefix = "Bearer "

// AuthMiddleware rejects requests that don't carry a valid bearer token.
func (j *JWTAuth) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			missing := apperr.Wrap(errors.New("missing bearer token"), apperr.ErrUnauthorized, "missing bearer token")
			c.AbortWithStatusJSON(apperr.Status(missing), apperr.Payload(missing))
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		claims, err := j.VerifyJWT(tokenString)
		if err != nil {
			invalid := apperr.Wrap(err, apperr.ErrUnauthorized, "invalid token")
			c.AbortWithStatusJSON(apperr.Status(invalid), apperr.Payload(invalid))
			return
		}
		c.Set("actor", claims.Actor)
		c.Next()
	}
}
