package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/wilt/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

// claims carries the user id and the token generation; tokens from an
// older generation are rejected.
type claims struct {
	jwt.RegisteredClaims
	UserID     int64  `json:"user_id"`
	Generation int    `json:"gen"`
	TokenType  string `json:"token_type"`
}

type userKey struct{}

func (s *Server) sign(u *user, kind string, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:     u.id,
		Generation: s.generation,
		TokenType:  kind,
	})
	return token.SignedString(s.secret)
}

func (s *Server) issueLocked(u *user) (models.TokenPair, error) {
	access, err := s.sign(u, "access", s.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := s.sign(u, "refresh", 24*time.Hour)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *Server) parse(tokenString string) (*claims, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}

		c, err := s.parse(strings.TrimPrefix(header, "Bearer "))

		s.mu.Lock()
		var u *user
		if err == nil && !s.rejecting && c.TokenType == "access" && c.Generation == s.generation {
			for _, candidate := range s.users {
				if candidate.id == c.UserID {
					u = candidate
					break
				}
			}
		}
		s.mu.Unlock()

		if u == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
	})
}

func currentUser(r *http.Request) *user {
	u, _ := r.Context().Value(userKey{}).(*user)
	return u
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	_ = json.NewDecoder(r.Body).Decode(&creds)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins++

	if creds.Username == "" || creds.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Please provide both username and password"})
		return
	}

	u, ok := s.users[creds.Username]
	if !ok || u.password != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}

	tokens, err := s.issueLocked(u)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Status:  "success",
		Message: "Login successful",
		User:    &models.User{ID: u.id, Username: u.username},
		Tokens:  &tokens,
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "message": "Registration failed"})
		return
	}

	problems := make(map[string][]string)
	if reg.Username == "" {
		problems["username"] = []string{"This field may not be blank."}
	}
	if reg.Password == "" {
		problems["password"] = []string{"This field may not be blank."}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[reg.Username]; exists && reg.Username != "" {
		problems["username"] = []string{"A user with that username already exists."}
	}
	if len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, problems)
		return
	}

	id := s.addUserLocked(reg.Username, reg.Password, reg.Email)
	u := s.users[reg.Username]
	tokens, err := s.issueLocked(u)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    models.User{ID: id, Username: u.username},
		"tokens":  tokens,
	})
}
