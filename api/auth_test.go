package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/adolfosalasgomez3011/luxpro-apps/api"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/repository/mock"
)

func TestAuthHandlers(t *testing.T) {
	secret := "testsecret"
	tokenDur := 1 * time.Hour

	checkToken := func(t *testing.T, b []byte) {
		var ar struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(b, &ar); err != nil {
			t.Fatalf("unmarshal token: %v", err)
		}
		tok, err := jwt.Parse(ar.Token, func(token *jwt.Token) (any, error) { return []byte(secret), nil })
		if err != nil {
			t.Fatalf("invalid token: %v", err)
		}
		claims := tok.Claims.(jwt.MapClaims)
		if _, ok := claims["operator_id"].(float64); !ok {
			t.Fatalf("missing operator_id claim: %v", claims)
		}
	}

	tests := []struct {
		name       string
		path       string
		body       any
		prepare    func(t *testing.T, m *mock.Store)
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
			checkBody: func(t *testing.T, b []byte) {
				if !bytes.Contains(b, []byte(`"name":"is required"`)) {
					t.Fatalf("expected field error for name, got %s", b)
				}
			},
		},
		{
			name:       "Signup_BadEmail",
			path:       "/signup",
			body:       map[string]string{"name": "Alice", "email": "alice", "password": "s3cret"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_ShortPassword",
			path:       "/signup",
			body:       map[string]string{"name": "Alice", "email": "alice@example.com", "password": "pw"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signup_Success",
			path:       "/signup",
			body:       map[string]string{"name": "Alice", "email": "alice@example.com", "password": "s3cret"},
			wantStatus: http.StatusCreated,
			checkBody:  checkToken,
		},
		{
			name: "Signup_DuplicateEmail",
			path: "/signup",
			body: map[string]string{"name": "Dup", "email": "DUP@example.com", "password": "s3cret"},
			prepare: func(t *testing.T, m *mock.Store) {
				seedOperator(t, m, "dup@example.com", "s3cret")
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "Signup_StoreDown",
			path: "/signup",
			body: map[string]string{"name": "Bob", "email": "bob@example.com", "password": "s3cret"},
			prepare: func(t *testing.T, m *mock.Store) {
				m.FailOn["CreateOperator"] = apperr.ErrStoreUnavailable
			},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "Signin_InvalidRequest",
			path:       "/signin",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signin_MissingFields_Email",
			path:       "/signin",
			body:       map[string]string{"password": "nop"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signin_UnknownEmail",
			path:       "/signin",
			body:       map[string]string{"email": "ghost@example.com", "password": "nop"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Signin_WrongPassword",
			path: "/signin",
			body: map[string]string{"email": "carol@example.com", "password": "wrong"},
			prepare: func(t *testing.T, m *mock.Store) {
				seedOperator(t, m, "carol@example.com", "right1")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Signin_Success",
			path: "/signin",
			body: map[string]string{"email": "Carol@Example.com", "password": "right1"},
			prepare: func(t *testing.T, m *mock.Store) {
				seedOperator(t, m, "carol@example.com", "right1")
			},
			wantStatus: http.StatusOK,
			checkBody:  checkToken,
		},
		{
			name: "Signin_StoreError",
			path: "/signin",
			body: map[string]string{"email": "carol@example.com", "password": "right1"},
			prepare: func(t *testing.T, m *mock.Store) {
				m.FailOn["GetOperatorByEmail"] = errors.New("disk on fire")
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "Signout",
			path:       "/signout",
			body:       map[string]string{},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mock.NewStore()
			if tt.prepare != nil {
				tt.prepare(t, m)
			}
			h := api.NewAuthHandler(m, secret, tokenDur)
			r := mux.NewRouter()
			r.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
			r.HandleFunc("/signin", h.Signin).Methods(http.MethodPost)
			r.HandleFunc("/signout", h.Signout).Methods(http.MethodPost)

			var buf bytes.Buffer
			if s, ok := tt.body.(string); ok {
				buf.WriteString(s)
			} else if err := json.NewEncoder(&buf).Encode(tt.body); err != nil {
				t.Fatalf("encode body: %v", err)
			}
			req := httptest.NewRequest(http.MethodPost, tt.path, &buf)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.checkBody != nil {
				tt.checkBody(t, w.Body.Bytes())
			}
		})
	}
}
