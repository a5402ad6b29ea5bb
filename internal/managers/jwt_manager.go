package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/badili/odk-dashboard3/internal/schemas"
	"github.com/badili/odk-dashboard3/internal/utils"
)

type JWTMgr interface {
	GenerateJWT(userId, username, sessionId string, refresh bool) (string, error)
	ValidateJWT(tokenString string) (jwt.Claims, error)
	JWTMiddleware(databaseMgr DatabaseMgr) gin.HandlerFunc
}

// JWTManager handles JWT generation, signing, and validation.
type JWTManager struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// NewJWTManager creates a new JWTManager with the given key pair.
func NewJWTManager(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey) JWTMgr {
	return &JWTManager{
		privateKey: privateKey,
		publicKey:  publicKey,
	}
}

// NewJWTManagerFromFile loads the key pair from the given path, generating
// and persisting a fresh pair on first startup.
func NewJWTManagerFromFile(path string) (JWTMgr, error) {
	log.Info("Initializing JWT manager")

	privateKey, publicKey, err := loadKeyPair(path)
	if err != nil {
		privateKey, publicKey, err = generateKeyPair(path)
		if err != nil {
			return nil, err
		}
	}

	return NewJWTManager(privateKey, publicKey), nil
}

// GenerateJWT generates a new JWT bound to the user and the server-side
// session. Refresh tokens live longer and are only accepted on the refresh
// route.
func (jm *JWTManager) GenerateJWT(userId, username, sessionId string, refresh bool) (string, error) {
	exp := time.Now().Add(time.Hour * 24)
	if refresh {
		exp = time.Now().Add(time.Hour * 24 * 7)
	}

	claims := jwt.MapClaims{
		"iss":      "odk-dashboard",
		"iat":      time.Now().Unix(),
		"exp":      exp.Unix(),
		"sub":      userId,
		"username": username,
		"sid":      sessionId,
		"refresh":  fmt.Sprintf("%t", refresh),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(jm.privateKey)
}

// ValidateJWT validates the given JWT and returns the claims if valid.
func (jm *JWTManager) ValidateJWT(tokenString string) (jwt.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodEdDSA.Alg() {
			return nil, fmt.Errorf("invalid signing method")
		}
		return jm.publicKey, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return token.Claims, nil
}

// JWTMiddleware rejects requests without a valid bearer token or whose
// session row no longer exists, i.e. after logout.
func (jm *JWTManager) JWTMiddleware(databaseMgr DatabaseMgr) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("missing bearer token"))
			c.Abort()
			return
		}

		claims, err := jm.ValidateJWT(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		mapClaims := claims.(jwt.MapClaims)
		if refresh, _ := mapClaims["refresh"].(string); refresh == "true" {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("refresh token used for access"))
			c.Abort()
			return
		}

		sessionId, _ := mapClaims["sid"].(string)
		queryString := "SELECT expires_at FROM dashboard.sessions WHERE session_id = $1"
		row := databaseMgr.GetPool().QueryRow(c.Request.Context(), queryString, sessionId)

		var expiresAt time.Time
		if err := row.Scan(&expiresAt); err != nil {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("session not found"))
			c.Abort()
			return
		}

		if time.Now().After(expiresAt) {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("session expired"))
			c.Abort()
			return
		}

		c.Set(utils.ClaimsKey, mapClaims)
		c.Next()
	}
}

// generateKeyPair generates a new key pair and saves it to a file.
func generateKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	if err = saveKeyPair(privateKey, publicKey, path); err != nil {
		return nil, nil, err
	}

	return privateKey, publicKey, nil
}

// saveKeyPair saves the key pair to the specified file.
func saveKeyPair(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey, path string) error {
	keyPairBytes := append(privateKey, publicKey...)
	return os.WriteFile(path, keyPairBytes, 0600)
}

// loadKeyPair loads the key pair from the specified file.
func loadKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	keyPairBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	// The key pair is the concatenation of private and public keys
	if len(keyPairBytes) != ed25519.PrivateKeySize+ed25519.PublicKeySize {
		return nil, nil, fmt.Errorf("invalid key pair format")
	}

	return keyPairBytes[:ed25519.PrivateKeySize], keyPairBytes[ed25519.PrivateKeySize:], nil
}
