package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-portfolio/services"
)

type AddUserInput struct {
	UserID   string `json:"userId" binding:"required,alphanum"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type LoginInput struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type loginResponse struct {
	Message string `json:"message"`
	*services.Tokens
}

func (h *Handler) AddUser(c *gin.Context) {
	var input AddUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badBody(c, err)
		return
	}

	user, err := h.Registration.Register(c.Request.Context(), services.RegisterInput{
		UserID:   input.UserID,
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badBody(c, err)
		return
	}

	tokens, err := h.Auth.Login(c.Request.Context(), input.UserID, input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Message: "Login successful", Tokens: tokens})
}

func (h *Handler) RefreshToken(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badBody(c, err)
		return
	}

	tokens, err := h.Auth.Refresh(c.Request.Context(), input.RefreshToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.Registration.Delete(c.Request.Context(), c.Param("userId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
