package jwt

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"variate-server/internal/config"
)

// Issuer issues the JWT
const Issuer = "variate-server"

// Audience is the intended JWT audience
const Audience = "variate-server/session"

// TTL is how long a session token is valid
const TTL = time.Hour * 24

var secret []byte

// LoadSecret will load the signing secret
// If none is configured a random one is generated, so tokens do not survive a restart.
// this method should only be called once.
func LoadSecret() {
	if s := config.Instance().JWT.Secret; s != "" {
		secret = []byte(s)
		return
	}

	logrus.Warn("no jwt secret configured, generating one")
	secret = make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		logrus.WithError(err).Fatal("could not generate jwt secret")
	}
}

// SetSecret replaces the signing secret
func SetSecret(s []byte) {
	secret = s
}

// Sign will sign a JWT granting access to a session
func Sign(sessionUUID string) (string, error) {
	if secret == nil {
		panic("LoadSecret() not called")
	}

	now := time.Now()
	token := jwtgo.NewWithClaims(jwtgo.SigningMethodHS256, jwtgo.RegisteredClaims{
		Audience:  jwtgo.ClaimStrings{Audience},
		ID:        uuid.New().String(),
		IssuedAt:  jwtgo.NewNumericDate(now),
		ExpiresAt: jwtgo.NewNumericDate(now.Add(TTL)),
		Issuer:    Issuer,
		Subject:   sessionUUID,
	})

	return token.SignedString(secret)
}

// ValidSessionUUID will validate a signed JWT and return the session it grants access to
func ValidSessionUUID(signedString string) (string, error) {
	if secret == nil {
		panic("LoadSecret() not called")
	}

	token, err := jwtgo.ParseWithClaims(signedString, &jwtgo.RegisteredClaims{}, func(token *jwtgo.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtgo.SigningMethodHMAC); !ok {
			return nil, errors.New("expected HS256 signing method")
		}

		return secret, nil
	})

	if err != nil {
		return "", err
	}

	if token.Valid {
		if claims, ok := token.Claims.(*jwtgo.RegisteredClaims); ok {
			if !containsAudience(claims.Audience, Audience) {
				return "", errors.New("invalid audience")
			}

			if claims.Issuer != Issuer {
				return "", errors.New("invalid issuer")
			}

			return claims.Subject, nil
		}

		return "", fmt.Errorf("expected jwt.RegisteredClaims, got %T", token.Claims)
	}

	logrus.Warn("token claims were not valid. did not expect to reach this code")
	return "", errors.New("claims were not valid")
}

func containsAudience(audiences jwtgo.ClaimStrings, target string) bool {
	for _, aud := range audiences {
		if aud == target {
			return true
		}
	}
	return false
}
