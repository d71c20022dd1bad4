package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/config"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongType    = errors.New("token type mismatch")
)

// Claims is the JWT payload shared by access and refresh tokens.
type Claims struct {
	UserID     string  `json:"id"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	CompanyID  *string `json:"company_id"`
	PlatformID string  `json:"platform_id"`
	TokenType  string  `json:"typ"`
	jwt.RegisteredClaims
}

// Subject is the user a pair of tokens is minted for.
type Subject struct {
	UserID     uuid.UUID
	Email      string
	Role       string
	CompanyID  *uuid.UUID
	PlatformID uuid.UUID
}

type Pair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

func NewIssuer(cfg config.Config) *Issuer {
	return &Issuer{
		accessSecret:  []byte(cfg.Auth.AccessSecret),
		refreshSecret: []byte(cfg.Auth.RefreshSecret),
		accessTTL:     cfg.Auth.AccessExpiresIn,
		refreshTTL:    cfg.Auth.RefreshExpiresIn,
		issuer:        cfg.AppName,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (i *Issuer) Issue(subject Subject) (Pair, error) {
	now := i.now()
	accessExp := now.Add(i.accessTTL)
	refreshExp := now.Add(i.refreshTTL)

	access, err := i.sign(subject, TypeAccess, now, accessExp, i.accessSecret)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(subject, TypeRefresh, now, refreshExp, i.refreshSecret)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (i *Issuer) ParseAccess(raw string) (*Claims, error) {
	return i.parse(raw, TypeAccess, i.accessSecret)
}

func (i *Issuer) ParseRefresh(raw string) (*Claims, error) {
	return i.parse(raw, TypeRefresh, i.refreshSecret)
}

func (i *Issuer) sign(subject Subject, typ string, now, exp time.Time, secret []byte) (string, error) {
	var companyID *string
	if subject.CompanyID != nil {
		value := subject.CompanyID.String()
		companyID = &value
	}
	claims := Claims{
		UserID:     subject.UserID.String(),
		Email:      subject.Email,
		Role:       subject.Role,
		CompanyID:  companyID,
		PlatformID: subject.PlatformID.String(),
		TokenType:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subject.UserID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (i *Issuer) parse(raw string, typ string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != typ {
		return nil, ErrWrongType
	}
	return claims, nil
}

// Identity decodes the subject carried by c.
func (c *Claims) Identity() (Subject, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return Subject{}, ErrInvalidToken
	}
	platformID, err := uuid.Parse(c.PlatformID)
	if err != nil {
		return Subject{}, ErrInvalidToken
	}
	subject := Subject{UserID: userID, Email: c.Email, Role: c.Role, PlatformID: platformID}
	if c.CompanyID != nil && *c.CompanyID != "" {
		companyID, err := uuid.Parse(*c.CompanyID)
		if err != nil {
			return Subject{}, ErrInvalidToken
		}
		subject.CompanyID = &companyID
	}
	return subject, nil
}
