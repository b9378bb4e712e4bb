package handler

import (
	"net/http"

	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers groups every HTTP handler the API serves
type Handlers struct {
	Auth         *AuthHandler
	Category     *CategoryHandler
	Expense      *ExpenseHandler
	Receipt      *ReceiptHandler
	Income       *IncomeHandler
	IncomeSource *IncomeSourceHandler
	Budget       *BudgetHandler
	Report       *ReportHandler
	Export       *ExportHandler
	Notification *NotificationHandler
	Admin        *AdminHandler
	Catalog      *CatalogHandler
	WebSocket    *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, exportLimiter *middleware.RateLimiter, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", ServeOpenAPI3Spec)

	// the websocket handler authenticates the query token itself
	e.GET("/ws", h.WebSocket.HandleWS)

	api := e.Group("/api/v1")

	// callback runs before the user and workspace exist
	auth := api.Group("/auth")
	auth.POST("/callback", h.Auth.Callback, authMiddleware.ValidateOnly())
	auth.GET("/me", h.Auth.Me, authMiddleware.Authenticate())

	protected := api.Group("", authMiddleware.Authenticate())

	categories := protected.Group("/categories")
	categories.GET("", h.Category.GetCategories)
	categories.POST("", h.Category.CreateCategory)
	categories.PUT("/:id", h.Category.UpdateCategory)
	categories.DELETE("/:id", h.Category.DeleteCategory)

	expenses := protected.Group("/expenses")
	expenses.GET("", h.Expense.GetExpenses)
	expenses.POST("", h.Expense.CreateExpense)
	expenses.GET("/:id", h.Expense.GetExpense)
	expenses.PUT("/:id", h.Expense.UpdateExpense)
	expenses.DELETE("/:id", h.Expense.DeleteExpense)
	expenses.POST("/:id/receipt", h.Receipt.UploadReceipt)
	expenses.GET("/:id/receipt", h.Receipt.GetReceipt)

	incomes := protected.Group("/incomes")
	incomes.GET("", h.Income.GetIncomes)
	incomes.POST("", h.Income.CreateIncome)
	incomes.DELETE("/:id", h.Income.DeleteIncome)

	sources := protected.Group("/income-sources")
	sources.GET("", h.IncomeSource.GetSources)
	sources.POST("", h.IncomeSource.CreateSource)
	sources.PUT("/:id", h.IncomeSource.UpdateSource)
	sources.DELETE("/:id", h.IncomeSource.DeleteSource)

	// static segments are matched before /:id
	budgets := protected.Group("/budgets")
	budgets.GET("", h.Budget.GetBudgets)
	budgets.POST("", h.Budget.SetBudget)
	budgets.GET("/monthly", h.Budget.GetMonthlyBudget)
	budgets.PUT("/monthly", h.Budget.SetMonthlyBudget)
	budgets.GET("/status", h.Budget.GetBudgetStatus)
	budgets.GET("/warnings", h.Budget.GetBudgetWarnings)
	budgets.DELETE("/:id", h.Budget.DeleteBudget)

	reports := protected.Group("/reports")
	reports.GET("/summary", h.Report.GetSummary)
	reports.GET("/trends", h.Report.GetMonthOverMonth)
	reports.GET("/timeseries", h.Report.GetTimeSeries)
	reports.GET("/spending-trends", h.Report.GetSpendingTrends)
	reports.GET("/month-end", h.Report.GetMonthEndSummary)

	exports := protected.Group("/exports", middleware.RateLimitMiddleware(exportLimiter))
	exports.GET("/expenses.csv", h.Export.ExportExpensesCSV)
	exports.GET("/backup.json", h.Export.GetBackup)
	exports.POST("/backup/archive", h.Export.ArchiveBackup)

	notifications := protected.Group("/notifications")
	notifications.GET("", h.Notification.GetNotifications)
	notifications.POST("/:id/read", h.Notification.MarkRead)

	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.GET("/stats", h.Admin.GetStats)
	admin.GET("/users", h.Admin.ListUsers)
	admin.PATCH("/users/:id/role", h.Admin.ChangeRole)
	admin.POST("/users/:id/toggle-status", h.Admin.ToggleStatus)
	admin.POST("/notifications/broadcast", h.Admin.Broadcast)
	admin.GET("/notifications/stats", h.Admin.NotificationStats)
	admin.GET("/expenses", h.Admin.ListExpenses)
	admin.GET("/expenses/summary", h.Admin.ExpenseSummary)

	admin.GET("/categories", h.Catalog.ListCategories)
	admin.POST("/categories", h.Catalog.CreateCategory)
	admin.PUT("/categories/:id", h.Catalog.UpdateCategory)
	admin.DELETE("/categories/:id", h.Catalog.DeleteCategory)
	admin.GET("/categories/:id/usage", h.Catalog.CategoryUsage)
	admin.GET("/income-sources", h.Catalog.ListIncomeSources)
	admin.POST("/income-sources", h.Catalog.CreateIncomeSource)
	admin.PUT("/income-sources/:id", h.Catalog.UpdateIncomeSource)
	admin.DELETE("/income-sources/:id", h.Catalog.DeleteIncomeSource)
	admin.GET("/income-sources/:id/usage", h.Catalog.IncomeSourceUsage)
}
