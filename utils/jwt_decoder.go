package utils

import (
	"errors"
	"fmt"
	"time"

	"vodpacker/models"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token not yet valid")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidIssuer    = errors.New("invalid issuer")
)

// VerifyConfig carries the key material and validation policy for job tokens.
type VerifyConfig struct {
	SecretKey      []byte        // HMAC key for HS256
	PublicKey      any           // *rsa.PublicKey for RS256
	ExpectedIssuer string        // optional issuer pin
	ClockSkew      time.Duration // tolerance applied to iat/exp
}

// key returns the verification key and the algorithms it admits.
func (c VerifyConfig) key() (any, []jose.SignatureAlgorithm, error) {
	switch {
	case c.SecretKey != nil && c.PublicKey != nil:
		return nil, nil, errors.New("configure either SecretKey or PublicKey, not both")
	case c.SecretKey != nil:
		return c.SecretKey, []jose.SignatureAlgorithm{jose.HS256}, nil
	case c.PublicKey != nil:
		return c.PublicKey, []jose.SignatureAlgorithm{jose.RS256}, nil
	default:
		return nil, nil, errors.New("no verification key provided")
	}
}

// VerifyJobToken checks the signature and time claims of a job submission
// token and returns its claims.
func VerifyJobToken(tokenString string, config VerifyConfig) (*models.VodpackerJWT, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	key, algs, err := config.key()
	if err != nil {
		return nil, err
	}

	tok, err := jwt.ParseSigned(tokenString, algs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims := &models.VodpackerJWT{}
	if err := tok.Claims(key, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	now := time.Now().Unix()
	skew := int64(config.ClockSkew.Seconds())
	if claims.ExpiresAt > 0 && claims.ExpiresAt < now-skew {
		return nil, ErrTokenExpired
	}
	if claims.IssuedAt > 0 && claims.IssuedAt > now+skew {
		return nil, ErrTokenNotYetValid
	}
	if config.ExpectedIssuer != "" && claims.Issuer != config.ExpectedIssuer {
		return nil, fmt.Errorf("%w: expected '%s', got '%s'",
			ErrInvalidIssuer, config.ExpectedIssuer, claims.Issuer)
	}

	return claims, nil
}

// CreateJobToken signs claims with HS256. Used by tests and by operators
// generating submission tokens out of band.
func CreateJobToken(claims *models.VodpackerJWT, secretKey []byte) (string, error) {
	if claims == nil {
		return "", errors.New("claims cannot be nil")
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: secretKey}, nil)
	if err != nil {
		return "", fmt.Errorf("create signer: %w", err)
	}
	return jwt.Signed(signer).Claims(claims).Serialize()
}
