package handler

import (
	"net/http"

	"github.com/as0628/expense-tracker-project/internal/service"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/gin-gonic/gin"
)

// PasswordHandler 负责忘记密码与重置密码
type PasswordHandler struct {
	Resets *service.PasswordReset
}

func NewPasswordHandler(resets *service.PasswordReset) *PasswordHandler {
	return &PasswordHandler{Resets: resets}
}

type forgotReq struct {
	Email string `json:"email"`
}

func (h *PasswordHandler) Forgot(c *gin.Context) {
	var req forgotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	if err := h.Resets.Forgot(c.Request.Context(), req.Email); err != nil {
		util.Fail(c, err)
		return
	}

	// 不区分邮箱是否存在，避免泄露注册信息
	util.Success(c, util.Response{
		"message": "If an account exists for that email, a reset link has been sent.",
	})
}

// CheckReset 前端打开重置页面前先确认链接仍然有效
func (h *PasswordHandler) CheckReset(c *gin.Context) {
	if err := h.Resets.Check(c.Request.Context(), c.Param("id")); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"valid": true})
}

type resetReq struct {
	Password string `json:"password"`
}

func (h *PasswordHandler) Reset(c *gin.Context) {
	var req resetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	if err := h.Resets.Reset(c.Request.Context(), c.Param("id"), req.Password); err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "Password reset successfully! You can now login with your new password.",
	})
}
