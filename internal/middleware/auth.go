package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/as0628/expense-tracker-project/internal/models"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TokenCookie is the cookie a browser client may keep the token in.
const TokenCookie = "et_token"

// AuthMiddleware 校验 JWT，并在 context 里放入当前用户。
// 每次请求都从数据库重新加载账户，保证 is_premium 是最新的。
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not logged in")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Session expired, please log in again")
			c.Abort()
			return
		}

		var account models.Account
		if err := db.WithContext(c.Request.Context()).First(&account, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "User not found")
			} else {
				_ = c.Error(err)
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load user")
			}
			c.Abort()
			return
		}

		c.Set("currentUser", &account)
		c.Set("userID", account.ID)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	// 1) Header: Authorization: Bearer xxx
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// 2) URL 查询参数 ?token=xxx（用于下载等无法自定义 Header 的场景）
	if t := c.Query("token"); t != "" {
		return t
	}

	// 3) Cookie
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}
