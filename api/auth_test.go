package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/trackops/trackd/api"
	"github.com/trackops/trackd/internal/auth"
	"github.com/trackops/trackd/pkg/models"
	"github.com/trackops/trackd/pkg/repository/mock"
)

// authed stamps the caller identity the JWT middleware would have set.
func authed(req *http.Request, userID int64, role auth.Role) *http.Request {
	ctx := context.WithValue(req.Context(), api.CtxUserID, userID)
	ctx = context.WithValue(ctx, api.CtxRole, role)
	return req.WithContext(ctx)
}

func TestAuthHandlers(t *testing.T) {
	secret := "testsecret"
	tokenDur := 1 * time.Hour

	tests := []struct {
		name       string
		path       string
		body       any
		prepare    func(m *mock.Mocks)
		wantStatus int
		checkBody  func(t *testing.T, body []byte)
	}{
		{
			name:       "Signup_InvalidRequest",
			path:       "/signup",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_MissingFields_Name",
			path:       "/signup",
			body:       map[string]string{"email": "alice@example.com", "password": "s3cret"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_MissingFields_Email",
			path:       "/signup",
			body:       map[string]string{"user_name": "Alice", "password": "s3cret"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_MissingFields_Password",
			path:       "/signup",
			body:       map[string]string{"user_name": "Alice", "email": "alice@example.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_Success_DefaultsToAgent",
			path:       "/signup",
			body:       map[string]string{"user_name": "Alice", "email": "alice@example.com", "password": "s3cret"},
			wantStatus: http.StatusCreated,
			checkBody: func(t *testing.T, b []byte) {
				var ar struct {
					Token  string       `json:"token"`
					User   *models.User `json:"user"`
					RoleID int64        `json:"role_id"`
				}
				if err := json.Unmarshal(b, &ar); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}
				if ar.Token == "" {
					t.Fatalf("empty token")
				}
				if ar.RoleID != int64(auth.RoleAgent) {
					t.Fatalf("expected agent role, got %d", ar.RoleID)
				}
				if ar.User == nil || ar.User.Tenure != 1 {
					t.Fatalf("expected default tenure 1, got %+v", ar.User)
				}
				if _, err := jwt.Parse(ar.Token, func(token *jwt.Token) (any, error) { return []byte(secret), nil }); err != nil {
					t.Fatalf("invalid token: %v", err)
				}
			},
		},
		{
			name:       "Signup_IgnoresRequestedRole",
			path:       "/signup",
			body:       map[string]any{"user_name": "Eve", "email": "eve@example.com", "password": "pw", "role_id": int64(auth.RoleAdmin)},
			wantStatus: http.StatusCreated,
			checkBody: func(t *testing.T, b []byte) {
				var ar struct {
					Token  string `json:"token"`
					RoleID int64  `json:"role_id"`
				}
				if err := json.Unmarshal(b, &ar); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}
				if ar.RoleID != int64(auth.RoleAgent) {
					t.Fatalf("signup honored requested role, got %d", ar.RoleID)
				}
				tok, err := jwt.Parse(ar.Token, func(token *jwt.Token) (any, error) { return []byte(secret), nil })
				if err != nil {
					t.Fatalf("parse token: %v", err)
				}
				claims, _ := tok.Claims.(jwt.MapClaims)
				if rid, _ := claims["role_id"].(float64); int64(rid) != int64(auth.RoleAgent) {
					t.Fatalf("token carries role claim %v, want agent", claims["role_id"])
				}
			},
		},
		{
			name:       "Signup_IgnoresRequestedTenure",
			path:       "/signup",
			body:       map[string]any{"user_name": "Mal", "email": "mal@example.com", "password": "pw", "user_tenure": 9.5},
			wantStatus: http.StatusCreated,
			checkBody: func(t *testing.T, b []byte) {
				var ar struct {
					User *models.User `json:"user"`
				}
				if err := json.Unmarshal(b, &ar); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}
				if ar.User == nil || ar.User.Tenure != 1 {
					t.Fatalf("signup honored requested tenure, got %+v", ar.User)
				}
			},
		},
		{
			name: "Signup_DuplicateEmail",
			path: "/signup",
			body: map[string]string{"user_name": "Dup", "email": "dup@example.com", "password": "pw"},
			prepare: func(m *mock.Mocks) {
				m.Users.CreateErr = fmt.Errorf("unique constraint")
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "Signin_InvalidRequest",
			path:       "/signin",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signin_MissingUser",
			path:       "/signin",
			body:       map[string]string{"email": "missing@example.com", "password": "nop"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Signin_Success",
			path: "/signin",
			body: map[string]string{"email": "bob@example.com", "password": "hunter2"},
			prepare: func(m *mock.Mocks) {
				hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
				m.Users.SeedUser(models.User{ID: 2, Email: "bob@example.com", RoleID: int64(auth.RoleQA), PasswordHash: string(hash)})
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, b []byte) {
				var ar struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(b, &ar); err != nil {
					t.Fatalf("unmarshal token: %v", err)
				}
				tok, err := jwt.Parse(ar.Token, func(token *jwt.Token) (any, error) { return []byte(secret), nil })
				if err != nil {
					t.Fatalf("parse token: %v", err)
				}
				claims, ok := tok.Claims.(jwt.MapClaims)
				if !ok {
					t.Fatalf("missing claims")
				}
				if uid, _ := claims["user_id"].(float64); int64(uid) != 2 {
					t.Fatalf("expected user_id claim 2, got %v", claims["user_id"])
				}
				if rid, _ := claims["role_id"].(float64); int64(rid) != int64(auth.RoleQA) {
					t.Fatalf("expected qa role claim, got %v", claims["role_id"])
				}
				if expF, ok := claims["exp"].(float64); !ok || int64(expF) < time.Now().Unix() {
					t.Fatalf("invalid exp claim")
				}
			},
		},
		{
			name: "Signin_WrongPassword",
			path: "/signin",
			body: map[string]string{"email": "c@example.com", "password": "wrongpw"},
			prepare: func(m *mock.Mocks) {
				hash, _ := bcrypt.GenerateFromPassword([]byte("rightpw"), bcrypt.DefaultCost)
				m.Users.SeedUser(models.User{ID: 3, Email: "c@example.com", PasswordHash: string(hash)})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Signout_OK",
			path:       "/signout",
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, b []byte) {
				if !bytes.Contains(b, []byte("signed out")) {
					t.Fatalf("unexpected body: %s", string(b))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := mock.NewMocks()
			if tt.prepare != nil {
				tt.prepare(mocks)
			}
			handler := api.NewAuthHandler(mocks.Users, secret, tokenDur)

			var bodyReader io.Reader
			if tt.body != nil {
				b, _ := json.Marshal(tt.body)
				bodyReader = bytes.NewReader(b)
			}
			req := httptest.NewRequest(http.MethodPost, tt.path, bodyReader)
			w := httptest.NewRecorder()

			switch tt.path {
			case "/signup":
				handler.Signup(w, req)
			case "/signin":
				handler.Signin(w, req)
			case "/signout":
				handler.Signout(w, req)
			default:
				t.Fatalf("unknown path %s", tt.path)
			}

			res := w.Result()
			defer res.Body.Close()
			data, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("%s: expected status %d got %d body=%s", tt.name, tt.wantStatus, res.StatusCode, string(data))
			}
			if tt.checkBody != nil {
				tt.checkBody(t, data)
			}
		})
	}
}

func TestUpdateUserAssignsRoles(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.Users.SeedUser(models.User{ID: 1, Name: "Admin", Email: "admin@example.com", Tenure: 1, RoleID: int64(auth.RoleAdmin)})
	mocks.Users.SeedUser(models.User{ID: 2, Name: "Eve", Email: "eve@example.com", Tenure: 1, RoleID: int64(auth.RoleAgent)})
	handler := api.NewAuthHandler(mocks.Users, "s", time.Hour)

	promote := map[string]any{"user_id": 2, "role_id": int64(auth.RoleManager), "user_tenure": 1.5}

	// Agents cannot reach role assignment, not even for themselves.
	w := httptest.NewRecorder()
	handler.UpdateUser(w, authed(jsonRequest(t, "/user/update", promote), 2, auth.RoleAgent))
	if w.Result().StatusCode != http.StatusForbidden {
		t.Fatalf("agent: expected 403 got %d", w.Result().StatusCode)
	}
	if u, _ := mocks.Users.GetUserByID(nil, 2); u.RoleID != int64(auth.RoleAgent) {
		t.Fatalf("role changed without capability: %+v", u)
	}

	// Admins can.
	w = httptest.NewRecorder()
	handler.UpdateUser(w, authed(jsonRequest(t, "/user/update", promote), 1, auth.RoleAdmin))
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("admin: expected 200 got %d", w.Result().StatusCode)
	}
	u, _ := mocks.Users.GetUserByID(nil, 2)
	if u.RoleID != int64(auth.RoleManager) || u.Tenure != 1.5 {
		t.Fatalf("expected promoted user, got %+v", u)
	}

	// Unknown roles are rejected.
	w = httptest.NewRecorder()
	handler.UpdateUser(w, authed(jsonRequest(t, "/user/update", map[string]any{"user_id": 2, "role_id": 99}), 1, auth.RoleAdmin))
	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown role: expected 400 got %d", w.Result().StatusCode)
	}
}

func TestListUsersRequiresManageCapability(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.Users.SeedUser(models.User{ID: 1, Name: "Admin", Email: "admin@example.com", RoleID: int64(auth.RoleAdmin)})
	mocks.Users.SeedUser(models.User{ID: 2, Name: "Agent", Email: "agent@example.com", RoleID: int64(auth.RoleAgent)})
	handler := api.NewAuthHandler(mocks.Users, "s", time.Hour)

	req := authed(httptest.NewRequest(http.MethodPost, "/list", nil), 2, auth.RoleAgent)
	w := httptest.NewRecorder()
	handler.ListUsers(w, req)
	if w.Result().StatusCode != http.StatusForbidden {
		t.Fatalf("agent: expected 403 got %d", w.Result().StatusCode)
	}

	req = authed(httptest.NewRequest(http.MethodPost, "/list", nil), 1, auth.RoleAdmin)
	w = httptest.NewRecorder()
	handler.ListUsers(w, req)
	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("admin: expected 200 got %d", res.StatusCode)
	}
	var env struct {
		Data []models.User `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(env.Data) != 2 {
		t.Fatalf("expected 2 users, got %d", len(env.Data))
	}
}
