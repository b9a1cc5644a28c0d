package handler

import (
	"net/http"

	"github.com/as0628/expense-tracker-project/internal/service"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 负责当前用户资料与密码修改
type ProfileHandler struct {
	Accounts *service.AccountService
}

// UpdateProfileReq 更新基本资料请求
type UpdateProfileReq struct {
	Name string `json:"name" binding:"required,max=100"`
}

// ChangePasswordReq 修改密码请求
type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateProfile 更新当前用户的名字
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	var req UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	updated, err := h.Accounts.UpdateName(c.Request.Context(), account.ID, req.Name)
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":    updated.ID,
			"name":  updated.Name,
			"email": updated.Email,
		},
	})
}

// ChangePassword 修改当前用户密码
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	if err := h.Accounts.ChangePassword(c.Request.Context(), account.ID, req.OldPassword, req.NewPassword); err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "Password changed, please log in again with the new password",
	})
}
