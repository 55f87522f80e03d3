package auth

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"jan-server/services/dialog-api/internal/config"
	"jan-server/services/dialog-api/internal/domain/dialog"
	"jan-server/services/dialog-api/internal/utils/platformerrors"
)

const userIDContextKey = "user_id"

// maxUserIDLength matches the width of the user id columns.
const maxUserIDLength = 64

// Validator validates JWTs using JWKS and resolves the requesting user.
type Validator struct {
	cfg     *config.Config
	log     zerolog.Logger
	jwks    *keyfunc.JWKS
	keyfunc jwt.Keyfunc
}

// NewValidator initializes JWKS fetching when auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	log = log.With().Str("component", "auth").Logger()
	if !cfg.AuthEnabled {
		log.Warn().Str("header", cfg.DevUserHeader).Msg("auth disabled, trusting user header")
		return &Validator{cfg: cfg, log: log}, nil
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("jwks refresh error")
		},
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, err
	}

	return &Validator{
		cfg:     cfg,
		log:     log,
		jwks:    jwks,
		keyfunc: jwks.Keyfunc,
	}, nil
}

// NewStaticValidator builds a validator that verifies tokens with a fixed key function.
func NewStaticValidator(cfg *config.Config, log zerolog.Logger, kf jwt.Keyfunc) *Validator {
	return &Validator{cfg: cfg, log: log, keyfunc: kf}
}

// Middleware resolves the requesting user. With auth enabled the user is the token subject;
// otherwise it is read from the development header.
func (v *Validator) Middleware() gin.HandlerFunc {
	if !v.cfg.AuthEnabled {
		header := v.cfg.DevUserHeader
		return func(c *gin.Context) {
			user, ok := normalizeUserID(c.GetHeader(header))
			if !ok {
				platformerrors.WriteUnauthorized(c, "missing or invalid "+header+" header")
				return
			}
			c.Set(userIDContextKey, user)
			c.Next()
		}
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithIssuer(v.cfg.AuthIssuer),
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
	}
	if audience := strings.TrimSpace(v.cfg.AuthAudience); audience != "" {
		parserOptions = append(parserOptions, jwt.WithAudience(audience))
	}

	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			platformerrors.WriteUnauthorized(c, "missing bearer token")
			return
		}

		token, err := jwt.Parse(tokenString, v.keyfunc, parserOptions...)
		if err != nil || !token.Valid {
			v.log.Debug().Err(err).Msg("token rejected")
			platformerrors.WriteUnauthorized(c, "invalid token")
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil {
			platformerrors.WriteUnauthorized(c, "token has no subject")
			return
		}
		user, ok := normalizeUserID(subject)
		if !ok {
			platformerrors.WriteUnauthorized(c, "token subject is empty or too long")
			return
		}

		c.Set(userIDContextKey, user)
		c.Next()
	}
}

// Ready indicates if the validator is prepared.
func (v *Validator) Ready() bool {
	if v == nil || !v.cfg.AuthEnabled {
		return true
	}
	return v.keyfunc != nil
}

// Close stops background JWKS refreshes.
func (v *Validator) Close() {
	if v != nil && v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// UserIDFromContext returns the user resolved by Middleware.
func UserIDFromContext(c *gin.Context) (dialog.UserID, bool) {
	val, ok := c.Get(userIDContextKey)
	if !ok {
		return "", false
	}
	user, ok := val.(dialog.UserID)
	return user, ok && user != ""
}

func normalizeUserID(raw string) (dialog.UserID, bool) {
	user := strings.TrimSpace(raw)
	if user == "" || utf8.RuneCountInString(user) > maxUserIDLength {
		return "", false
	}
	return dialog.UserID(user), true
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
