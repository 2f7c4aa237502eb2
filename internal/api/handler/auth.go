package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"chatterbox/backend/internal/config"
	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/storage"
)

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// generateJWT issues a signed token carrying the user ID.
func (h *Handler) generateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(config.TokenLifetime).Unix(),
		"iss": config.TokenIssuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}

// Register creates an account and returns the user with a fresh token.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	existing, err := h.Store.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("ERROR: Failed to look up user %s: %v", req.Email, err)
		respondError(c, http.StatusInternalServerError, "Failed to register")
		return
	}
	if existing != nil {
		respondError(c, http.StatusConflict, "User already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to register")
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
	}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		log.Printf("ERROR: Failed to create user %s: %v", req.Email, err)
		respondError(c, http.StatusInternalServerError, "Failed to register")
		return
	}

	token, err := h.generateJWT(user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create token")
		return
	}

	respondSuccess(c, http.StatusCreated, "Registered successfully", gin.H{
		"user":  user,
		"token": token,
	})
}

// Login checks credentials and returns the user with a fresh token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	user, err := h.Store.FindUserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to look up user %s: %v", req.Email, err)
		respondError(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := h.Store.TouchLastSeen(c.Request.Context(), user.ID); err != nil {
		log.Printf("ERROR: Failed to update last seen for %s: %v", user.ID, err)
	}

	token, err := h.generateJWT(user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create token")
		return
	}

	respondSuccess(c, http.StatusOK, "", gin.H{
		"user":  user,
		"token": token,
	})
}

// Me returns the authenticated user together with their conversations.
func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString(ContextUserID)

	user, err := h.Store.FindUserByID(c.Request.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(c, http.StatusUnauthorized, "Unknown user")
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to load user %s: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	conversations, err := h.Store.ConversationsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	// Attach the newest message of each conversation as its preview.
	for i := range conversations {
		last, err := h.Store.LastMessage(c.Request.Context(), conversations[i].ID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			log.Printf("ERROR: Failed to load preview for conversation %s: %v", conversations[i].ID, err)
			continue
		}
		conversations[i].Messages = []models.Message{*last}
	}

	respondSuccess(c, http.StatusOK, "", gin.H{
		"user":          user,
		"conversations": conversations,
	})
}
