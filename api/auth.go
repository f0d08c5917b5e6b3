package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/trackops/trackd/internal/auth"
	"github.com/trackops/trackd/pkg/models"
	"github.com/trackops/trackd/pkg/repository"
)

type AuthHandler struct {
	userRepo      repository.UserRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{userRepo: ur, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type signupRequest struct {
	Name     string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string       `json:"token"`
	User   *models.User `json:"user"`
	RoleID int64        `json:"role_id"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()

	// Open signup always creates an agent account at full tenure. Roles
	// and tenure are changed only through the user-management endpoint,
	// so an unauthenticated caller can never mint a privileged token.
	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Tenure:       1,
		RoleID:       int64(auth.RoleAgent),
		PasswordHash: string(hash),
	}
	userID, err := h.userRepo.CreateUser(ctx, &user)
	if err != nil {
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}
	user.ID = userID

	tokenStr, err := h.issueToken(&user)
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, User: &user, RoleID: user.RoleID}, http.StatusCreated)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	user, err := h.userRepo.GetUserByEmail(r.Context(), req.Email)
	if err != nil || user == nil {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	tokenStr, err := h.issueToken(user)
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, User: user, RoleID: user.RoleID}, http.StatusOK)
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	// Stateless JWT, signout is client-side (just delete the token).
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"message":"signed out"}`)
}

// ListUsers returns every account with role names, for the user-management
// screen. Requires the user-management capability.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	_, role, ok := identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !auth.CapabilitiesFor(role).CanManageUsers {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	users, err := h.userRepo.ListUsers(r.Context())
	if err != nil {
		http.Error(w, "Failed to list users", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	writeJSON(w, dataEnvelope{Data: users}, http.StatusOK)
}

type userUpdateRequest struct {
	UserID flexID   `json:"user_id"`
	Name   string   `json:"user_name,omitempty"`
	Tenure *float64 `json:"user_tenure,omitempty"`
	RoleID int64    `json:"role_id,omitempty"`
}

// UpdateUser changes an account's name, tenure or role. This is the only
// path that assigns roles; it requires the user-management capability.
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	_, role, ok := identity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !auth.CapabilitiesFor(role).CanManageUsers {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req userUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	id := req.UserID.Int64()
	if id <= 0 {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	user, err := h.userRepo.GetUserByID(r.Context(), id)
	if err != nil || user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.Tenure != nil {
		if *req.Tenure <= 0 {
			http.Error(w, "user_tenure must be positive", http.StatusBadRequest)
			return
		}
		user.Tenure = *req.Tenure
	}
	if req.RoleID != 0 {
		newRole := auth.RoleFromID(req.RoleID)
		if newRole == auth.RoleUnknown {
			http.Error(w, "Unknown role", http.StatusBadRequest)
			return
		}
		user.RoleID = int64(newRole)
	}

	if err := h.userRepo.UpdateUser(r.Context(), user); err != nil {
		http.Error(w, "Failed to update user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, dataEnvelope{Data: user}, http.StatusOK)
}

func (h *AuthHandler) issueToken(u *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"role_id": u.RoleID,
		"email":   u.Email,
		"exp":     time.Now().Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}
