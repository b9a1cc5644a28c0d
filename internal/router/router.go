package router

import (
	"net/http"

	"github.com/as0628/expense-tracker-project/internal/config"
	"github.com/as0628/expense-tracker-project/internal/handler"
	"github.com/as0628/expense-tracker-project/internal/middleware"
	"github.com/as0628/expense-tracker-project/internal/service"
	"github.com/as0628/expense-tracker-project/internal/storage"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is wired to.
type Deps struct {
	DB  *gorm.DB
	Log *logrus.Logger

	Accounts      *service.AccountService
	Ledger        *service.LedgerService
	BasicReports  *service.ReportEngine
	PremiumReport *service.ReportEngine
	Exports       *service.ExportEngine
	Leaderboard   *service.Leaderboard
	Payments      *service.PaymentService
	Resets        *service.PasswordReset

	// LocalFiles is set when exports are kept on local disk.
	LocalFiles *storage.Local
}

// SetupRouter configures the Gin engine and all API routes.
func SetupRouter(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(d.Log), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			_ = c.Error(err)
			util.Error(c, http.StatusServiceUnavailable, util.CodeServerErr, "database unavailable")
			return
		}
		util.Success(c, util.Response{"status": "ok"})
	})

	// 本地存储的报表下载，token 在签名链接里
	if d.LocalFiles != nil {
		files := &handler.FileHandler{Store: d.LocalFiles}
		r.GET("/files/*key", files.Download)
	}

	// 忘记密码（不需要鉴权）
	passwordHandler := handler.NewPasswordHandler(d.Resets)
	pw := r.Group("/password")
	pw.POST("/forgot", passwordHandler.Forgot)
	pw.GET("/reset/:id", passwordHandler.CheckReset)
	pw.POST("/reset/:id", passwordHandler.Reset)

	// ====== API ======
	api := r.Group("/api")

	// 登录/注册接口（不需要鉴权）
	authHandler := handler.NewAuthHandler(d.Accounts)
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)

	// 需要登录才能访问的接口
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret, d.DB))

	protected.GET("/me", handler.GetMe)

	profileHandler := &handler.ProfileHandler{Accounts: d.Accounts}
	protected.POST("/profile", profileHandler.UpdateProfile)
	protected.POST("/profile/password", profileHandler.ChangePassword)

	expenseHandler := handler.NewExpenseHandler(d.Ledger, d.BasicReports)
	protected.GET("/expenses", expenseHandler.List)
	protected.POST("/expenses", expenseHandler.Create)
	protected.PUT("/expenses/:id", expenseHandler.Update)
	protected.DELETE("/expenses/:id", expenseHandler.Delete)
	protected.GET("/expenses/report", expenseHandler.Report)
	protected.GET("/expenses/export", expenseHandler.ExportCSV)

	premiumHandler := &handler.PremiumHandler{
		Ledger:      d.Ledger,
		Reports:     d.PremiumReport,
		Exports:     d.Exports,
		Board:       d.Leaderboard,
	}
	premium := protected.Group("/premium")
	premium.GET("/expenses", premiumHandler.ListExpenses)
	premium.POST("/expenses", expenseHandler.Create)
	premium.PUT("/expenses/:id", expenseHandler.Update)
	premium.DELETE("/expenses/:id", expenseHandler.Delete)
	premium.GET("/report", premiumHandler.Report)
	premium.GET("/download", premiumHandler.Download)
	premium.GET("/history", premiumHandler.History)
	premium.GET("/leaderboard", premiumHandler.Leaderboard)

	orderHandler := handler.NewOrderHandler(d.Payments)
	protected.POST("/order", orderHandler.Create)
	protected.POST("/order/status", orderHandler.Verify)
	protected.GET("/order/:orderId", orderHandler.Status)

	return r
}
