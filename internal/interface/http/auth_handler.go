package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devfolio-api/internal/application"
	"github.com/oksasatya/devfolio-api/internal/domain/entity"
	"github.com/oksasatya/devfolio-api/pkg/response"
)

const (
	MsgRegistered   = "Registration successful"
	MsgLoginSuccess = "Login successful"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,pwd"`
}

type signupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Message   string            `json:"message"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      entity.PublicUser `json:"user"`
}

// Signup POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, application.MsgAllFieldsRequired)
		return
	}
	id, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, signupResponse{Message: MsgRegistered, UserID: id})
}

// Login POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, application.MsgLoginFieldsRequired)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, loginResponse{
		Message:   MsgLoginSuccess,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      res.User,
	})
}

// Me GET /api/me
func (h *AuthHandler) Me(c *gin.Context, u *entity.User) {
	response.JSON(c, http.StatusOK, u.Public())
}
