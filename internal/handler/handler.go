package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"automarket/internal/config"
	"automarket/internal/model"
	"automarket/internal/repository"
	"automarket/internal/service"
	"automarket/pkg/response"
)

// Handler wires the HTTP surface to the services. Handlers stay thin: decode,
// call, map errors.
type Handler struct {
	purchaseService *service.PurchaseService
	balanceService  *service.BalanceService
	pricingService  *service.PricingService
	statusService   *service.StatusService
}

func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	tx := repository.NewTxManager(db)
	users := repository.NewUserRepository(db)
	listings := repository.NewListingRepository(db)
	ledger := repository.NewTransactionRepository(db)
	pricingRepo := repository.NewPricingRepository(db)
	outbox := repository.NewOutboxRepository(db)

	pricingService := service.NewPricingService(
		pricingRepo, rdb,
		time.Duration(cfg.Business.PricingCacheTTLSec)*time.Second,
		cfg.DefaultPricing,
	)
	balanceService := service.NewBalanceService(tx, users, ledger, outbox, rdb, cfg)

	return &Handler{
		purchaseService: service.NewPurchaseService(tx, users, listings, ledger, balanceService, pricingService, outbox, cfg),
		balanceService:  balanceService,
		pricingService:  pricingService,
		statusService:   service.NewStatusService(listings),
	}
}

// PurchaseVIP handles POST /api/v1/vip/purchase/:listingId.
func (h *Handler) PurchaseVIP(c *gin.Context) {
	listingID, err := strconv.ParseInt(c.Param("listingId"), 10, 64)
	if err != nil || listingID <= 0 {
		response.ParamError(c, "invalid listing id")
		return
	}

	var req struct {
		model.PurchaseRequest
		Category model.Category `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body: "+err.Error())
		return
	}
	if req.Category == "" {
		req.Category = model.CategoryCars
	}

	result, err := h.purchaseService.Purchase(c.Request.Context(), req.Category, listingID, currentUserID(c), &req.PurchaseRequest)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, result)
}

// GetVIPStatus handles GET /api/v1/vip/status/:listingId. Public.
func (h *Handler) GetVIPStatus(c *gin.Context) {
	listingID, err := strconv.ParseInt(c.Param("listingId"), 10, 64)
	if err != nil || listingID <= 0 {
		response.ParamError(c, "invalid listing id")
		return
	}

	category := model.Category(c.DefaultQuery("category", string(model.CategoryCars)))
	if !model.ValidCategory(category) {
		response.ParamError(c, "invalid category")
		return
	}

	status, err := h.statusService.GetStatus(c.Request.Context(), category, listingID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, status)
}

// GetPricing handles GET /api/v1/vip/pricing?role=&category=. Public.
func (h *Handler) GetPricing(c *gin.Context) {
	role := model.UserRole(c.DefaultQuery("role", string(model.RoleUser)))
	if !model.ValidUserRole(role) {
		response.ParamError(c, "invalid role")
		return
	}
	category := model.Category(c.DefaultQuery("category", string(model.CategoryCars)))
	if !model.ValidCategory(category) {
		response.ParamError(c, "invalid category")
		return
	}

	prices, fallbackVersion, err := h.pricingService.List(c.Request.Context(), role, category)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, gin.H{
		"role":             role,
		"category":         category,
		"prices":           prices,
		"fallback_version": fallbackVersion,
	})
}

// GetBalance handles GET /api/v1/balance.
func (h *Handler) GetBalance(c *gin.Context) {
	balance, err := h.balanceService.GetBalance(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, gin.H{"balance": balance})
}

// ListTransactions handles GET /api/v1/balance/transactions.
func (h *Handler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	transactions, total, err := h.balanceService.ListTransactions(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      transactions,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// InitiateDeposit handles POST /api/v1/balance/deposit.
func (h *Handler) InitiateDeposit(c *gin.Context) {
	var req struct {
		Amount   string `json:"amount" binding:"required"`
		Provider string `json:"provider" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body: "+err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.ParamError(c, "invalid amount")
		return
	}

	intent, err := h.balanceService.InitiateDeposit(c.Request.Context(), currentUserID(c), amount, req.Provider)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, intent)
}

// FlittCallback handles the Flitt payment confirmation webhook. Per the
// gateway contract the response is always 200; processing failures are logged
// and retried by the gateway.
func (h *Handler) FlittCallback(c *gin.Context) {
	var req struct {
		OrderID string `json:"order_id"`
		Status  string `json:"order_status"`
		Amount  string `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
		logrus.Warnf("malformed flitt callback: %v", err)
		c.JSON(200, gin.H{"received": true})
		return
	}

	amount, _ := decimal.NewFromString(req.Amount)
	succeeded := req.Status == "approved"

	if err := h.balanceService.Credit(c.Request.Context(), service.ProviderFlitt, req.OrderID, amount, succeeded); err != nil {
		logrus.WithField("order_id", req.OrderID).Errorf("flitt callback processing failed: %v", err)
	}

	c.JSON(200, gin.H{"received": true})
}

// BOGCallback handles the Bank of Georgia payment confirmation webhook.
// Always answers 200, same contract as Flitt.
func (h *Handler) BOGCallback(c *gin.Context) {
	var req struct {
		ExternalOrderID string `json:"external_order_id"`
		Status          string `json:"status"`
		Amount          string `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ExternalOrderID == "" {
		logrus.Warnf("malformed bog callback: %v", err)
		c.JSON(200, gin.H{"received": true})
		return
	}

	amount, _ := decimal.NewFromString(req.Amount)
	succeeded := req.Status == "success"

	if err := h.balanceService.Credit(c.Request.Context(), service.ProviderBOG, req.ExternalOrderID, amount, succeeded); err != nil {
		logrus.WithField("order_id", req.ExternalOrderID).Errorf("bog callback processing failed: %v", err)
	}

	c.JSON(200, gin.H{"received": true})
}

// renderError maps service errors to the HTTP taxonomy. Unknown errors are
// logged with context and surfaced as a generic server error.
func (h *Handler) renderError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var insufficientErr *service.InsufficientFundsError
	var duplicateErr *service.DuplicateRequestError

	switch {
	case errors.As(err, &validationErr):
		response.ParamError(c, validationErr.Reason)
	case errors.As(err, &insufficientErr):
		response.BusinessError(c, response.CodeInsufficientFunds, "insufficient balance", gin.H{
			"required_amount": insufficientErr.Required,
			"current_balance": insufficientErr.Current,
		})
	case errors.As(err, &duplicateErr):
		response.BusinessError(c, response.CodeDuplicateRequest, "request_id already used for a different operation", nil)
	case errors.Is(err, service.ErrNothingSelected):
		response.BusinessError(c, response.CodeNothingSelected, "select at least one service", nil)
	case errors.Is(err, service.ErrNotOwner):
		response.Forbidden(c, "forbidden")
	case errors.Is(err, repository.ErrListingNotFound):
		response.NotFound(c, "listing not found")
	case errors.Is(err, repository.ErrUserNotFound):
		response.UserNotFound(c, "user not found")
	default:
		logrus.WithField("path", c.Request.URL.Path).Errorf("request failed: %v", err)
		response.ServerError(c, "internal server error")
	}
}
