package handler

import (
	"net/http"
	"strconv"

	"github.com/as0628/expense-tracker-project/internal/models"
	"github.com/as0628/expense-tracker-project/internal/service"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/gin-gonic/gin"
)

// currentAccount 取出 AuthMiddleware 放入的当前用户，没有则直接返回 401
func currentAccount(c *gin.Context) (*models.Account, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not logged in")
		return nil, false
	}
	account, ok := v.(*models.Account)
	if !ok || account == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not logged in")
		return nil, false
	}
	return account, true
}

// queryInt 解析分页参数，缺省或非法时返回 0，交给 Paginate 使用默认值
func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// GetMe 返回当前登录用户信息（需要经过 AuthMiddleware）
func GetMe(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":            account.ID,
			"name":          account.Name,
			"email":         account.Email,
			"is_premium":    account.IsPremium,
			"total_expense": service.FormatCents(account.TotalExpense),
			"created_at":    account.CreatedAt,
		},
	})
}
