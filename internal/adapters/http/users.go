package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ducvu/chatserver/internal/auth"
	"github.com/ducvu/chatserver/internal/core"
	"github.com/ducvu/chatserver/internal/domain"
	"github.com/ducvu/chatserver/internal/store"
)

const cookieMaxAge = 7 * 24 * 3600

type UserController struct {
	Users  *store.Users
	JWT    *auth.JWTManager
	Hasher *auth.PasswordHasher
}

type registerPayload struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ctl *UserController) Register(c *gin.Context) {
	var p registerPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	user, err := domain.NewUser(p.Username, p.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := ctl.Users.FindByEmail(c.Request.Context(), p.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already taken"})
		return
	} else if !errors.Is(err, core.ErrNotFound) {
		log.Error().Err(err).Str("module", "adapters.http").Msg("email lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	hash, err := ctl.Hasher.Hash(p.Password)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("password hash failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}
	user.PasswordHash = hash

	if err := ctl.Users.Create(c.Request.Context(), user); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("user create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	token, err := ctl.JWT.Issue(user)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("token issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}
	c.SetCookie(auth.CookieName, token, cookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully", "token": token})
}

type loginPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ctl *UserController) Login(c *gin.Context) {
	var p loginPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	user, err := ctl.Users.FindByEmail(c.Request.Context(), p.Email)
	if err != nil || !ctl.Hasher.Verify(p.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := ctl.JWT.Issue(user)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("token issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}
	c.SetCookie(auth.CookieName, token, cookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// VerifyToken re-checks the cookie against the user record so a deleted user
// cannot keep a live session.
func (ctl *UserController) VerifyToken(c *gin.Context) {
	email := c.GetString(auth.CtxEmail)
	user, err := ctl.Users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "No user found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payload": gin.H{
		"_id":      user.ID,
		"username": user.Username,
		"email":    user.Email,
	}})
}

// ListFriends returns every user with public fields only.
func (ctl *UserController) ListFriends(c *gin.Context) {
	users, err := ctl.Users.FindAll(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}
	c.JSON(http.StatusOK, users)
}
