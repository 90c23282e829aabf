// Package auth implements signup/login and token issuance. The engine treats
// the resulting JWT claims (user_id, role, email_verified) as the externally
// supplied identity; nothing downstream re-validates credentials.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/sealabid/sealabid/internal/db"
)

const tokenTTL = 72 * time.Hour

// Handler serves the auth routes.
type Handler struct {
	db     *db.DB
	secret []byte
}

// NewHandler constructs the auth handler with the HS256 signing secret.
func NewHandler(d *db.DB, secret []byte) *Handler {
	return &Handler{db: d, secret: secret}
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Signup registers a user and returns a token. Accounts start unverified;
// verification is owned by the identity layer and only flips a flag here.
func (h *Handler) Signup(c echo.Context) error {
	req := new(SignupRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and a password of at least 6 characters are required"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	userID := uuid.New()
	_, err = h.db.Pool.Exec(context.Background(), `
		INSERT INTO users (id, name, email, password, role, email_verified)
		VALUES ($1, $2, $3, $4, 'user', FALSE)
	`, userID, req.Name, req.Email, string(hashed))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create account"})
	}

	signed, err := h.sign(userID.String(), "user", false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}
	return c.JSON(http.StatusCreated, TokenResponse{Token: signed})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and returns a fresh token.
func (h *Handler) Login(c echo.Context) error {
	req := new(LoginRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var (
		userID   uuid.UUID
		password string
		role     string
		verified bool
	)
	err := h.db.Pool.QueryRow(context.Background(), `
		SELECT id, password, role, email_verified FROM users WHERE email = $1
	`, req.Email).Scan(&userID, &password, &role, &verified)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	signed, err := h.sign(userID.String(), role, verified)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: signed})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var (
		id       uuid.UUID
		name     string
		email    string
		role     string
		verified bool
	)
	err := h.db.Pool.QueryRow(context.Background(),
		`SELECT id, name, email, role, email_verified FROM users WHERE id = $1`, userID).
		Scan(&id, &name, &email, &role, &verified)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":             id,
		"name":           name,
		"email":          email,
		"role":           role,
		"email_verified": verified,
	})
}

func (h *Handler) sign(userID, role string, verified bool) (string, error) {
	claims := jwt.MapClaims{
		"user_id":        userID,
		"role":           role,
		"email_verified": verified,
		"exp":            time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.secret)
}
