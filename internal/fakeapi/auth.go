package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const claimsKey contextKey = "claims"

// Claims is the payload of the fake's access tokens.
type Claims struct {
	UserID  int64 `json:"user_id"`
	IsAdmin bool  `json:"is_adm"`
	jwt.RegisteredClaims
}

func (s *Server) signToken(userID int64, admin bool) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:  userID,
		IsAdmin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			Issuer:    "verona-fakeapi",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// requireToken rejects requests without a valid bearer token, and tokens
// whose user has since been deleted.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			fail(w, http.StatusUnauthorized, "Token no provisto")
			return
		}

		claims, err := s.parseToken(parts[1])
		if err != nil {
			s.logger.Debug("fakeapi: token rejected", zap.Error(err))
			fail(w, http.StatusUnauthorized, "Token inválido o expirado")
			return
		}
		if _, found := s.store.userByID(claims.UserID); !found {
			fail(w, http.StatusUnauthorized, "Usuario inexistente")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey).(*Claims)
	return c
}

// requireAdmin answers 403 unless the caller's token carries the admin flag.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if c := claimsFrom(r.Context()); c == nil || !c.IsAdmin {
		fail(w, http.StatusForbidden, "Se requieren permisos de administrador")
		return false
	}
	return true
}

type credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// POST /users/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decode(w, r, &in) {
		return
	}

	u, found := s.store.userByName(strings.TrimSpace(in.Name))
	if !found || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(in.Password)) != nil {
		fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.signToken(u.UserID, bool(u.IsAdmin))
	if err != nil {
		s.logger.Error("fakeapi: sign token", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Error interno")
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{
		Success: true,
		Message: "Login exitoso",
		User:    u.User,
		Token:   token,
	})
}
