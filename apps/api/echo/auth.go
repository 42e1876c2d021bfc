package echoapi

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/user"
)

// token types
const (
	accessToken  = "access"
	refreshToken = "refresh"
)

var (
	contextUserKey   = "user"
	contextClaimsKey = "claims"
	audience         = "schoolsaas"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	// Version is the token version of the user at issue time. Bumping the user's version revokes the token.
	Version int    `json:"ver"`
	Type    string `json:"typ"`
}

// TokenPair is what a successful login, registration or refresh hands out.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Tokens issues and checks the HS256 JWTs of the API.
type Tokens struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time // mockable
}

func NewTokens(conf *core.Config) *Tokens {
	return &Tokens{
		secret:     []byte(conf.SecretKey),
		issuer:     conf.AppName,
		accessTTL:  conf.Server.JWTExpirationDelta,
		refreshTTL: conf.Server.JWTRefreshExpirationDelta,
		now:        time.Now,
	}
}

func (t *Tokens) claims(usr user.User, typ string, ttl time.Duration) *Claims {
	now := t.now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   usr.ID,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Email:   usr.Email,
		Role:    usr.Role,
		Version: usr.TokenVersion,
		Type:    typ,
	}
}

// Sign generates a signed JWT token string representing the Claims.
func (t *Tokens) Sign(claims *Claims) (string, error) {
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Issue signs a new access and refresh token pair for usr.
func (t *Tokens) Issue(usr user.User) (TokenPair, error) {
	access, err := t.Sign(t.claims(usr, accessToken, t.accessTTL))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.Sign(t.claims(usr, refreshToken, t.refreshTTL))
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Parse verifies the signature, issuer, audience and expiry of a token of the given type.
func (t *Tokens) Parse(token, typ string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || claims.Type != typ || claims.Subject == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// tokenUser returns the active user a token was issued to, provided the token was not revoked since.
func tokenUser(ctx echo.Context, claims *Claims, svc user.Service) (user.User, error) {
	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if core.IsNotFound(err) {
			return user.User{}, errInvalidToken
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return user.User{}, errAccountDeactivated
	}
	if usr.TokenVersion != claims.Version {
		return user.User{}, errTokenRevoked
	}
	return usr, nil
}

func bearerToken(ctx echo.Context) (string, bool) {
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// authMiddleware requires a valid access token and loads its user into the context.
// With optional set, requests without an Authorization header go through anonymously.
func authMiddleware(tokens *Tokens, svc user.Service, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if optional && ctx.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(ctx)
			}
			token, ok := bearerToken(ctx)
			if !ok {
				return errMissingToken
			}
			claims, err := tokens.Parse(token, accessToken)
			if err != nil {
				return err
			}
			usr, err := tokenUser(ctx, claims, svc)
			if err != nil {
				return err
			}
			ctx.Set(contextClaimsKey, claims)
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}
