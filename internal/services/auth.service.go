package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService manages JWT token generation and validation
type AuthService struct {
	secretKey   string
	tokenExpiry time.Duration
}

// CustomClaims represents the JWT claims structure
type CustomClaims struct {
	ClientName string `json:"client_name"`
	UserAgent  string `json:"user_agent"`
	jwt.RegisteredClaims
}

var authService *AuthService

// InitAuthService initializes the authentication service
func InitAuthService(secretKey string, tokenExpiry time.Duration) *AuthService {
	if secretKey == "" {
		// Primary: user's home directory. Backup: temp directory.
		homeDir, _ := os.UserHomeDir()
		keyFile := filepath.Join(homeDir, ".nabz-secret-key")
		if homeDir == "" {
			keyFile = filepath.Join(os.TempDir(), ".nabz-secret-key")
		}

		if data, err := os.ReadFile(keyFile); err == nil && len(data) > 0 {
			secretKey = strings.TrimSpace(string(data))
			log.Printf("✓ Loaded persisted secret key from %s (length: %d bytes)\n", keyFile, len(secretKey))
		} else {
			// Generate a strong secret key (32+ bytes for HMAC-SHA256)
			hostname, err := os.Hostname()
			if err != nil {
				hostname = "nabz-host"
			}

			randomBytes := make([]byte, 16)
			_, err = rand.Read(randomBytes)
			if err != nil {
				secretKey = fmt.Sprintf("nabz-%s-%d-backup", hostname, time.Now().UnixNano())
				log.Printf("⚠️  Warning: Random generation failed, using fallback key\n")
			} else {
				randomHex := hex.EncodeToString(randomBytes)
				secretKey = fmt.Sprintf("nabz-%s-%s", hostname, randomHex)
			}

			if err := os.WriteFile(keyFile, []byte(secretKey), 0600); err != nil {
				log.Printf("⚠️  Warning: Could not persist secret key to %s: %v\n", keyFile, err)
			} else {
				log.Printf("✓ Generated and persisted secret key to %s (length: %d bytes)\n", keyFile, len(secretKey))
			}
		}
	}

	if tokenExpiry == 0 {
		tokenExpiry = 90 * 24 * time.Hour // 90 days default
	}

	secretKey = strings.TrimSpace(secretKey)

	// HMAC-SHA256 needs at least 32 key bytes
	if len(secretKey) < 32 {
		log.Printf("⚠️  Warning: Secret key is only %d bytes. Recommended minimum is 32 bytes for HMAC-SHA256\n", len(secretKey))
		needed := 32 - len(secretKey)
		paddingBytes := make([]byte, needed)
		_, _ = rand.Read(paddingBytes)
		secretKey = secretKey + hex.EncodeToString(paddingBytes)
		log.Printf("Padded secret key to %d bytes\n", len(secretKey))
	}

	authService = &AuthService{
		secretKey:   secretKey,
		tokenExpiry: tokenExpiry,
	}

	return authService
}

// GenerateToken creates a new JWT token for a named client
func GenerateToken(clientName string) (string, error) {
	if authService == nil {
		return "", fmt.Errorf("auth service not initialized")
	}

	now := time.Now()
	expiresAt := now.Add(authService.tokenExpiry)

	claims := CustomClaims{
		ClientName: clientName,
		UserAgent:  "nabz-client",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "nabz-core",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(authService.secretKey))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken verifies and parses a JWT token
func ValidateToken(tokenString string) (*CustomClaims, error) {
	if authService == nil {
		return nil, fmt.Errorf("auth service not initialized")
	}

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(authService.secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// GetTokenExpiry returns when a token issued now would expire
func GetTokenExpiry() time.Time {
	if authService == nil {
		return time.Time{}
	}
	return time.Now().Add(authService.tokenExpiry)
}
