package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/config"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidIssuer   = errors.New("invalid issuer")
	ErrInvalidAudience = errors.New("invalid audience")
)

type Service interface {
	Issue(id Identity) (*IssueResult, error)
	Validate(tokenString string) (*Claims, error)
}

type IssueResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

type service struct {
	logger     *zap.Logger
	cfg        *config.JWTConfig
	signingAlg jwt.SigningMethod
}

func NewService(logger *zap.Logger, cfg *config.JWTConfig) Service {
	return &service{
		logger:     logger,
		cfg:        cfg,
		signingAlg: jwt.SigningMethodHS256,
	}
}

func (s *service) Issue(id Identity) (*IssueResult, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.cfg.AccessTTL)
	claims := &Claims{
		UID:      id.UserID,
		Role:     id.Role,
		TenantID: id.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UniqueID,
			Issuer:    s.cfg.JWTIssuer,
			Audience:  jwt.ClaimStrings{s.cfg.JWTAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        s.generateJTI(),
		},
	}

	jwtToken := jwt.NewWithClaims(s.signingAlg, claims)
	if s.cfg.JWTKID != "" {
		jwtToken.Header["kid"] = s.cfg.JWTKID
	}
	accessToken, err := jwtToken.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return nil, err
	}

	return &IssueResult{AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}

func (s *service) Validate(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.signingAlg.Alg()}),
	)

	var claims Claims
	tkn, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Issuer != s.cfg.JWTIssuer {
		return nil, ErrInvalidIssuer
	}

	{
		ok := false
		for _, aud := range claims.Audience {
			if aud == s.cfg.JWTAudience {
				ok = true
				break
			}
		}
		if !ok {
			return nil, ErrInvalidAudience
		}
	}
	return &claims, nil
}

func (s *service) generateJTI() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
