package handler

import (
	"net/http"
	"strconv"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// AdminHandler serves the admin dashboard, user management and broadcasts
type AdminHandler struct {
	adminService        *service.AdminService
	notificationService *service.NotificationService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *service.AdminService, notificationService *service.NotificationService) *AdminHandler {
	return &AdminHandler{
		adminService:        adminService,
		notificationService: notificationService,
	}
}

// SpenderResponse is one of the month's top spenders
type SpenderResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Total  string `json:"total"`
	Count  int64  `json:"count"`
}

// AdminExpenseResponse is an expense with the user who owns it
type AdminExpenseResponse struct {
	ExpenseResponse
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
}

// PaginatedAdminExpensesResponse is a page of expenses across every workspace
type PaginatedAdminExpensesResponse struct {
	Data       []AdminExpenseResponse `json:"data"`
	Page       int32                  `json:"page"`
	PageSize   int32                  `json:"pageSize"`
	TotalItems int64                  `json:"totalItems"`
	TotalPages int32                  `json:"totalPages"`
}

// CategorySpendResponse is a category's share of the filtered expenses
type CategorySpendResponse struct {
	CategoryID   *int32 `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Total        string `json:"total"`
	Count        int64  `json:"count"`
}

// AdminExpenseSummaryResponse aggregates the filtered expenses
type AdminExpenseSummaryResponse struct {
	Total      string                  `json:"total"`
	Count      int64                   `json:"count"`
	Average    string                  `json:"average"`
	ByUser     []SpenderResponse       `json:"byUser"`
	ByCategory []CategorySpendResponse `json:"byCategory"`
}

// KindCountResponse counts notifications of one kind
type KindCountResponse struct {
	Kind  string `json:"kind"`
	Count int64  `json:"count"`
}

// NotificationStatsResponse counts notifications across every workspace
type NotificationStatsResponse struct {
	Total  int64               `json:"total"`
	Unread int64               `json:"unread"`
	Read   int64               `json:"read"`
	ByKind []KindCountResponse `json:"byKind"`
}

func toSpenderResponse(sp *domain.SpenderTotal) SpenderResponse {
	return SpenderResponse{
		UserID: sp.UserID.String(),
		Email:  sp.Email,
		Total:  formatMoney(sp.Total),
		Count:  sp.Count,
	}
}

// AdminStatsResponse is the admin dashboard
type AdminStatsResponse struct {
	Month          string                  `json:"month"`
	TotalUsers     int64                   `json:"totalUsers"`
	ActiveUsers    int64                   `json:"activeUsers"`
	AdminUsers     int64                   `json:"adminUsers"`
	ThisMonthTotal string                  `json:"thisMonthTotal"`
	LastMonthTotal string                  `json:"lastMonthTotal"`
	GrowthPercent  *string                 `json:"growthPercent"`
	TopCategories  []CategoryTotalResponse `json:"topCategories"`
	TopSpenders    []SpenderResponse       `json:"topSpenders"`
	ActiveBudgets  int64                   `json:"activeBudgets"`
	ExpenseCount   int64                   `json:"expenseCount"`
}

// ChangeRoleRequest is the body of PATCH /admin/users/:id/role
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// BroadcastRequest is the body of POST /admin/notifications/broadcast
type BroadcastRequest struct {
	Title   string `json:"title" validate:"required,max=120"`
	Message string `json:"message" validate:"required,max=2000"`
}

// BroadcastResponse reports how many workspaces received a broadcast
type BroadcastResponse struct {
	Recipients int64 `json:"recipients"`
}

// GetStats godoc
// @Summary Admin dashboard
// @Description User counts, this month's platform spend, top categories and spenders
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AdminStatsResponse
// @Failure 403 {object} ProblemDetails
// @Router /admin/stats [get]
func (h *AdminHandler) GetStats(c echo.Context) error {
	stats, err := h.adminService.GetStats()
	if err != nil {
		return respondError(c, err, "Failed to load admin stats")
	}

	response := AdminStatsResponse{
		Month:          formatMonth(stats.Month),
		TotalUsers:     stats.TotalUsers,
		ActiveUsers:    stats.ActiveUsers,
		AdminUsers:     stats.AdminUsers,
		ThisMonthTotal: formatMoney(stats.ThisMonthTotal),
		LastMonthTotal: formatMoney(stats.LastMonthTotal),
		TopCategories:  make([]CategoryTotalResponse, len(stats.TopCategories)),
		TopSpenders:    make([]SpenderResponse, len(stats.TopSpenders)),
		ActiveBudgets:  stats.ActiveBudgets,
		ExpenseCount:   stats.ExpenseCount,
	}
	if stats.GrowthPercent != nil {
		s := stats.GrowthPercent.StringFixed(2)
		response.GrowthPercent = &s
	}
	for i, cat := range stats.TopCategories {
		response.TopCategories[i] = CategoryTotalResponse{
			CategoryID:   cat.CategoryID,
			CategoryName: cat.CategoryName,
			Total:        formatMoney(cat.Total),
		}
	}
	for i, sp := range stats.TopSpenders {
		response.TopSpenders[i] = toSpenderResponse(sp)
	}
	return c.JSON(http.StatusOK, response)
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "user or admin"
// @Param active query bool false "Filter by active flag"
// @Param search query string false "Email substring"
// @Success 200 {array} UserResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	var filters domain.UserFilters
	if raw := c.QueryParam("role"); raw != "" {
		role := domain.Role(raw)
		filters.Role = &role
	}
	if raw := c.QueryParam("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return NewValidationError(c, "Invalid active filter", []ValidationError{
				{Field: "active", Message: "Must be true or false"},
			})
		}
		filters.IsActive = &active
	}
	filters.Search = c.QueryParam("search")

	users, err := h.adminService.ListUsers(filters)
	if err != nil {
		return respondError(c, err, "Failed to list users")
	}

	response := make([]UserResponse, len(users))
	for i, u := range users {
		response[i] = toUserResponse(u)
	}
	return c.JSON(http.StatusOK, response)
}

func parseUserID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}

// ChangeRole handles PATCH /api/v1/admin/users/:id/role
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body ChangeRoleRequest true "Role"
// @Success 200 {object} UserResponse
// @Failure 403 {object} ProblemDetails
// @Router /admin/users/{id}/role [patch]
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	actor, ok := middleware.GetOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Workspace required")
	}
	userID, ok := parseUserID(c)
	if !ok {
		return NewValidationError(c, "Invalid user ID", nil)
	}

	var req ChangeRoleRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}

	user, err := h.adminService.ChangeRole(actor, userID, domain.Role(req.Role))
	if err != nil {
		return respondError(c, err, "Failed to change role")
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ToggleStatus handles POST /api/v1/admin/users/:id/toggle-status
// @Summary Activate or deactivate a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 403 {object} ProblemDetails
// @Router /admin/users/{id}/toggle-status [post]
func (h *AdminHandler) ToggleStatus(c echo.Context) error {
	actor, ok := middleware.GetOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Workspace required")
	}
	userID, ok := parseUserID(c)
	if !ok {
		return NewValidationError(c, "Invalid user ID", nil)
	}

	user, err := h.adminService.ToggleStatus(actor, userID)
	if err != nil {
		return respondError(c, err, "Failed to change user status")
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Broadcast godoc
// @Summary Broadcast a notification to every active workspace
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BroadcastRequest true "Notification"
// @Success 201 {object} BroadcastResponse
// @Failure 400 {object} ProblemDetails
// @Router /admin/notifications/broadcast [post]
func (h *AdminHandler) Broadcast(c echo.Context) error {
	var req BroadcastRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}

	count, err := h.notificationService.Broadcast(req.Title, req.Message)
	if err != nil {
		return respondError(c, err, "Failed to broadcast notification")
	}
	return c.JSON(http.StatusCreated, BroadcastResponse{Recipients: count})
}

// adminExpenseFilters reads the expense filters shared by the listing and
// the summary. On failure it returns the offending query parameter.
func adminExpenseFilters(c echo.Context) (domain.AdminExpenseFilters, string, error) {
	var filters domain.AdminExpenseFilters

	if raw := c.QueryParam("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, "userId", err
		}
		filters.UserID = &id
	}
	if raw := c.QueryParam("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return filters, "categoryId", err
		}
		categoryID := int32(id)
		filters.CategoryID = &categoryID
	}

	var err error
	if filters.StartDate, err = optionalDateQuery(c, "startDate"); err != nil {
		return filters, "startDate", err
	}
	if filters.EndDate, err = optionalDateQuery(c, "endDate"); err != nil {
		return filters, "endDate", err
	}
	if filters.MinAmount, err = optionalDecimalQuery(c, "minAmount"); err != nil {
		return filters, "minAmount", err
	}
	if filters.MaxAmount, err = optionalDecimalQuery(c, "maxAmount"); err != nil {
		return filters, "maxAmount", err
	}

	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return filters, "page", err
		}
		filters.Page = int32(page)
	}
	if raw := c.QueryParam("pageSize"); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return filters, "pageSize", err
		}
		filters.PageSize = int32(size)
	}
	return filters, "", nil
}

func optionalDecimalQuery(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func filterValidationError(c echo.Context, field string) error {
	return NewValidationError(c, "Invalid "+field, []ValidationError{
		{Field: field, Message: field + " is invalid"},
	})
}

// ListExpenses godoc
// @Summary List expenses across every workspace
// @Description Newest first, with the owning user's email
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Owner user ID"
// @Param categoryId query int false "Category ID"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param minAmount query string false "Minimum amount"
// @Param maxAmount query string false "Maximum amount"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Success 200 {object} PaginatedAdminExpensesResponse
// @Failure 400 {object} ProblemDetails
// @Router /admin/expenses [get]
func (h *AdminHandler) ListExpenses(c echo.Context) error {
	filters, field, err := adminExpenseFilters(c)
	if err != nil {
		return filterValidationError(c, field)
	}

	result, err := h.adminService.ListExpenses(filters)
	if err != nil {
		return respondError(c, err, "Failed to list expenses")
	}

	data := make([]AdminExpenseResponse, len(result.Data))
	for i, e := range result.Data {
		data[i] = AdminExpenseResponse{
			ExpenseResponse: toExpenseResponse(&e.Expense),
			UserID:          e.UserID.String(),
			UserEmail:       e.UserEmail,
		}
	}
	return c.JSON(http.StatusOK, PaginatedAdminExpensesResponse{
		Data:       data,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// ExpenseSummary godoc
// @Summary Summarize expenses across every workspace
// @Description Total, count and average of the filtered expenses with the top ten users and categories
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Owner user ID"
// @Param categoryId query int false "Category ID"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param minAmount query string false "Minimum amount"
// @Param maxAmount query string false "Maximum amount"
// @Success 200 {object} AdminExpenseSummaryResponse
// @Failure 400 {object} ProblemDetails
// @Router /admin/expenses/summary [get]
func (h *AdminHandler) ExpenseSummary(c echo.Context) error {
	filters, field, err := adminExpenseFilters(c)
	if err != nil {
		return filterValidationError(c, field)
	}

	summary, err := h.adminService.SummarizeExpenses(filters)
	if err != nil {
		return respondError(c, err, "Failed to summarize expenses")
	}

	response := AdminExpenseSummaryResponse{
		Total:      formatMoney(summary.Total),
		Count:      summary.Count,
		Average:    formatMoney(summary.Average),
		ByUser:     make([]SpenderResponse, len(summary.ByUser)),
		ByCategory: make([]CategorySpendResponse, len(summary.ByCategory)),
	}
	for i, sp := range summary.ByUser {
		response.ByUser[i] = toSpenderResponse(sp)
	}
	for i, cs := range summary.ByCategory {
		response.ByCategory[i] = CategorySpendResponse{
			CategoryID:   cs.CategoryID,
			CategoryName: cs.CategoryName,
			Total:        formatMoney(cs.Total),
			Count:        cs.Count,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// NotificationStats godoc
// @Summary Notification counts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} NotificationStatsResponse
// @Router /admin/notifications/stats [get]
func (h *AdminHandler) NotificationStats(c echo.Context) error {
	stats, err := h.notificationService.Stats()
	if err != nil {
		return respondError(c, err, "Failed to load notification stats")
	}

	response := NotificationStatsResponse{
		Total:  stats.Total,
		Unread: stats.Unread,
		Read:   stats.Read,
		ByKind: make([]KindCountResponse, len(stats.ByKind)),
	}
	for i, kc := range stats.ByKind {
		response.ByKind[i] = KindCountResponse{Kind: string(kc.Kind), Count: kc.Count}
	}
	return c.JSON(http.StatusOK, response)
}
