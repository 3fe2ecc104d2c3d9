package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"acai-store/middlewares"
	"acai-store/store"
	"acai-store/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct {
	admins AdminStore
	secret string
	ttl    time.Duration
}

func NewAuthController(admins AdminStore, secret string, ttl time.Duration) *AuthController {
	return &AuthController{admins: admins, secret: secret, ttl: ttl}
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, err := h.admins.GetAdminByLogin(c.Request.Context(), req.Login)
	if errors.Is(err, store.ErrAdminNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login or password"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login or password"})
		return
	}

	token, err := utils.IssueToken(h.secret, admin.ID, admin.Login, h.ttl)
	if err != nil {
		log.Printf("Failed to issue token for %s: %v", admin.Login, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(h.ttl.Seconds()),
		"admin":      gin.H{"id": admin.ID, "name": admin.Name, "login": admin.Login},
	})
}

func (h *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":    c.GetString(middlewares.AdminIDKey),
		"login": c.GetString(middlewares.AdminLoginKey),
	})
}
