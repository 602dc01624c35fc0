package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/RishiKendai/pairwise/internal/models"
	"github.com/RishiKendai/pairwise/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) Register(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Username (3-64 chars) and password (8-72 chars) are required", "INVALID_REQUEST")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password")
		abortWithError(c, http.StatusInternalServerError, "Failed to create user", "INTERNAL_ERROR")
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hash),
	}
	err = h.deps.Users.InsertUser(c.Request.Context(), user)
	if errors.Is(err, repository.ErrDuplicateUsername) {
		abortWithError(c, http.StatusConflict, "Username already exists", "USERNAME_TAKEN")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("Failed to create user")
		abortWithError(c, http.StatusInternalServerError, "Failed to create user", "INTERNAL_ERROR")
		return
	}

	log.Info().Str("userId", user.ID).Msg("User registered")
	h.respondWithToken(c, http.StatusCreated, user.ID)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Username and password are required", "INVALID_REQUEST")
		return
	}

	user, err := h.deps.Users.GetUserByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, repository.ErrNotFound) {
		abortWithError(c, http.StatusUnauthorized, "Invalid username or password", "INVALID_CREDENTIALS")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to look up user")
		abortWithError(c, http.StatusInternalServerError, "Failed to log in", "INTERNAL_ERROR")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid username or password", "INVALID_CREDENTIALS")
		return
	}

	h.respondWithToken(c, http.StatusOK, user.ID)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, userID string) {
	token, err := h.issueToken(userID, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign token")
		abortWithError(c, http.StatusInternalServerError, "Failed to issue token", "INTERNAL_ERROR")
		return
	}

	c.JSON(status, models.TokenResponse{
		Token:     token,
		ExpiresIn: int64(h.cfg.JWTTTL.Seconds()),
	})
}

func (h *Handler) issueToken(userID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    h.cfg.JWTIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.cfg.JWTTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
}
