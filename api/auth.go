package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/validation"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/repository"
)

type AuthHandler struct {
	operators     repository.OperatorRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(or repository.OperatorRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{operators: or, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}

	op := models.Operator{Name: req.Name, Email: req.Email, PasswordHash: string(hash)}
	id, err := h.operators.CreateOperator(r.Context(), &op)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.issue(w, r, id, req.Email, http.StatusCreated)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	op, err := h.operators.GetOperatorByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if op == nil || bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)) != nil {
		writeJSON(w, errorResponse{Error: "unauthorized", Message: "credentials not found"}, http.StatusUnauthorized)
		return
	}

	h.issue(w, r, op.ID, op.Email, http.StatusOK)
}

// Signout is client-side for stateless tokens.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"message": "signed out"}, http.StatusOK)
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, id int64, email string, status int) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":               strings.ToLower(email),
		string(CtxOperatorID): id,
		"exp":                 time.Now().Add(h.tokenDuration).Unix(),
	})
	tokenStr, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, authResponse{Token: tokenStr}, status)
}
