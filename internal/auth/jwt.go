// AngelaMos | 2026
// jwt.go

package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/kallan/backend/internal/config"
	"github.com/kallan/backend/internal/core"
)

// CookieSigner turns a session id into the ES256-signed value stored in
// the session cookie, and back.
type CookieSigner struct {
	privateKey jwk.Key
	publicKey  jwk.Key
	issuer     string
}

type CookieClaims struct {
	SessionID    string
	UserID       int64
	TokenVersion int
	ExpiresAt    time.Time
}

func NewCookieSigner(cfg config.SessionConfig) (*CookieSigner, error) {
	privateKeyPEM, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	return NewCookieSignerFromPEM(privateKeyPEM, cfg.Issuer)
}

func NewCookieSignerFromPEM(privateKeyPEM []byte, issuer string) (*CookieSigner, error) {
	privateKey, err := jwk.ParseKey(privateKeyPEM, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	if setErr := privateKey.Set(jwk.AlgorithmKey, jwa.ES256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	keyID := uuid.New().String()[:8]
	if setErr := privateKey.Set(jwk.KeyIDKey, keyID); setErr != nil {
		return nil, fmt.Errorf("set key id: %w", setErr)
	}

	publicKey, err := privateKey.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}

	return &CookieSigner{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
	}, nil
}

// GenerateKeyPairPEM creates a fresh P-256 key pair in PEM form.
func GenerateKeyPairPEM() (privatePEM, publicPEM []byte, err error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate key: %w", err)
	}

	jwkPrivate, err := jwk.Import(privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("import private key: %w", err)
	}

	privatePEM, err = jwk.Pem(jwkPrivate)
	if err != nil {
		return nil, nil, fmt.Errorf("encode private key: %w", err)
	}

	jwkPublic, err := jwkPrivate.PublicKey()
	if err != nil {
		return nil, nil, fmt.Errorf("derive public key: %w", err)
	}

	publicPEM, err = jwk.Pem(jwkPublic)
	if err != nil {
		return nil, nil, fmt.Errorf("encode public key: %w", err)
	}

	return privatePEM, publicPEM, nil
}

func GenerateKeyPair(privateKeyPath, publicKeyPath string) error {
	privatePEM, publicPEM, err := GenerateKeyPairPEM()
	if err != nil {
		return err
	}

	for _, dir := range []string{filepath.Dir(privateKeyPath), filepath.Dir(publicKeyPath)} {
		if mkErr := os.MkdirAll(dir, 0o700); mkErr != nil {
			return fmt.Errorf("create key dir: %w", mkErr)
		}
	}

	if writeErr := os.WriteFile(privateKeyPath, privatePEM, 0o600); writeErr != nil {
		return fmt.Errorf("write private key: %w", writeErr)
	}

	//nolint:gosec // G306: public key is intentionally world-readable
	if writeErr := os.WriteFile(publicKeyPath, publicPEM, 0o644); writeErr != nil {
		return fmt.Errorf("write public key: %w", writeErr)
	}

	return nil
}

func (s *CookieSigner) Sign(claims CookieClaims) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		JwtID(claims.SessionID).
		Issuer(s.issuer).
		Subject(strconv.FormatInt(claims.UserID, 10)).
		IssuedAt(now).
		Expiration(claims.ExpiresAt).
		NotBefore(now.Add(-time.Minute)).
		Claim("token_version", claims.TokenVersion).
		Claim("type", "session").
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), s.privateKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

func (s *CookieSigner) Verify(value string) (*CookieClaims, error) {
	token, err := jwt.Parse(
		[]byte(value),
		jwt.WithKey(jwa.ES256(), s.publicKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.TokenExpiredError()) {
			return nil, fmt.Errorf("verify session cookie: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify session cookie: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get("type", &tokenType); err != nil || tokenType != "session" {
		return nil, fmt.Errorf(
			"verify session cookie: invalid token type: %w",
			core.ErrTokenInvalid,
		)
	}

	sessionID, ok := token.JwtID()
	if !ok || sessionID == "" {
		return nil, fmt.Errorf(
			"verify session cookie: missing session id: %w",
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok {
		return nil, fmt.Errorf(
			"verify session cookie: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf(
			"verify session cookie: bad subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var versionFloat float64
	if err := token.Get("token_version", &versionFloat); err != nil {
		return nil, fmt.Errorf(
			"verify session cookie: missing token_version claim: %w",
			core.ErrTokenInvalid,
		)
	}

	expiresAt, _ := token.Expiration()

	return &CookieClaims{
		SessionID:    sessionID,
		UserID:       userID,
		TokenVersion: int(versionFloat),
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *CookieSigner) KeyID() string {
	var kid string
	//nolint:errcheck // key ID always set during construction
	_ = s.privateKey.Get(jwk.KeyIDKey, &kid)
	return kid
}
