package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/booknest/backend/middleware"
	"github.com/booknest/backend/models"
	"github.com/booknest/backend/store"
	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	DB             *store.DB
	JWTSecret      string
	GoogleClientID string
	// Bootstrap admin credentials (from config); seeded on first login
	AdminEmail string
	AdminPass  string
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GoogleLogin exchanges a verified Google ID token for a session token,
// creating the user on first login.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(req.IDToken, []string{h.GoogleClientID}); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid google id token")
		return
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(req.IDToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid google id token")
		return
	}
	user, err := h.DB.UpsertGoogleUser(r.Context(), claimSet.Sub, strings.ToLower(claimSet.Email), claimSet.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	token, err := h.createToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create token")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Email: user.Email, Role: user.Role})
}

// Login authenticates the bootstrap admin with email and password. The
// admin user is seeded on first successful login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.DB.UserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil {
		emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(h.AdminEmail)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.AdminPass)) == 1
		if !emailOK || !passOK {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		user, err = h.ensureAdminUser(r)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}
	} else {
		if user.Password == "" {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
	}

	token, err := h.createToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create token")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Email: user.Email, Role: user.Role})
}

func (h *AuthHandler) ensureAdminUser(r *http.Request) (*models.User, error) {
	// Check again in case of race
	user, err := h.DB.UserByEmail(r.Context(), h.AdminEmail)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(h.AdminPass), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &models.User{
		Email:       h.AdminEmail,
		DisplayName: "Administrator",
		Password:    string(hash),
		Role:        models.RoleAdmin,
		CreatedAt:   time.Now(),
	}
	id, err := h.DB.CreateUser(r.Context(), admin)
	if err != nil {
		return nil, err
	}
	admin.ID = id
	return admin, nil
}

func (h *AuthHandler) createToken(user *models.User) (string, error) {
	claims := &middleware.Claims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour * 7)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.JWTSecret))
}
