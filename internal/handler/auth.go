package handler

import (
	"net/http"

	"github.com/as0628/expense-tracker-project/internal/service"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责登录/注册相关接口
type AuthHandler struct {
	Accounts *service.AccountService
}

func NewAuthHandler(accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{Accounts: accounts}
}

// ---------- 注册 ----------

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	account, err := h.Accounts.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Created(c, util.Response{
		"message": "User registered successfully",
		"user": gin.H{
			"id":    account.ID,
			"name":  account.Name,
			"email": account.Email,
		},
	})
}

// ---------- 登录 ----------

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	token, account, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":         account.ID,
			"name":       account.Name,
			"email":      account.Email,
			"is_premium": account.IsPremium,
		},
	})
}
