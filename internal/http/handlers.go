package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"kasir/internal/checkout"
	"kasir/internal/domain"
	"kasir/internal/repository"
	"kasir/internal/service"
)

type Server struct {
	engine   *gin.Engine
	logger   zerolog.Logger
	auth     *service.AuthService
	products *service.ProductService
	types    *service.CustomerTypeService
	txns     *service.TransactionService
	reports  *service.ReportService
	seed     *service.SeedService
	sessions *checkout.Manager
}

func NewServer(
	logger zerolog.Logger,
	auth *service.AuthService,
	products *service.ProductService,
	types *service.CustomerTypeService,
	txns *service.TransactionService,
	reports *service.ReportService,
	seed *service.SeedService,
	sessions *checkout.Manager,
) *Server {
	r := gin.New()
	s := &Server{
		engine:   r,
		logger:   logger,
		auth:     auth,
		products: products,
		types:    types,
		txns:     txns,
		reports:  reports,
		seed:     seed,
		sessions: sessions,
	}
	r.Use(requestLogger(logger), gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/init", s.initData)
		v1.POST("/auth/register", s.register)
		v1.POST("/auth/login", s.login)

		authed := v1.Group("", s.authRequired())
		{
			authed.GET("/auth/me", s.me)

			products := authed.Group("/products")
			products.POST("", s.createProduct)
			products.GET("", s.listProducts)
			products.GET("/low-stock", s.listLowStock)
			products.GET(":id", s.getProduct)
			products.PUT(":id", s.updateProduct)
			products.DELETE(":id", s.deleteProduct)

			types := authed.Group("/customer-types")
			types.POST("", s.createCustomerType)
			types.GET("", s.listCustomerTypes)

			txns := authed.Group("/transactions")
			txns.POST("", s.createTransaction)
			txns.GET("", s.listTransactions)
			txns.GET(":id", s.getTransaction)

			reports := authed.Group("/reports")
			reports.GET("/daily", s.dailyReport)
			reports.GET("/weekly", s.weeklyReport)
			reports.GET("/monthly", s.monthlyReport)

			authed.GET("/dashboard/stats", s.dashboard)

			s.registerSessionRoutes(authed)
		}
	}
}

// Auth handlers

type registerReq struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// @Summary Register user
// @Tags auth
// @Accept json
// @Produce json
// @Param input body registerReq true "Credentials"
// @Success 201 {object} domain.User
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (s *Server) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := s.auth.Register(c, req.Username, req.Password, req.Role)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, u)
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginReq true "Credentials"
// @Success 200 {object} loginResp
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (s *Server) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	token, u, err := s.auth.Login(c, req.Username, req.Password)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, loginResp{Token: token, User: *u})
}

// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.User
// @Router /auth/me [get]
func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// @Summary Seed default customer types and admin account
// @Tags init
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /init [post]
func (s *Server) initData(c *gin.Context) {
	created, err := s.seed.Run(c)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"seeded": created})
}

// Product handlers

type productReq struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	SKU          string          `json:"sku"`
	PriceRegular decimal.Decimal `json:"price_regular"`
	PriceSales   decimal.Decimal `json:"price_sales"`
	PriceBengkel decimal.Decimal `json:"price_bengkel"`
	Stock        int64           `json:"stock"`
	MinStock     int64           `json:"min_stock"`
	Category     string          `json:"category"`
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body productReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.Create(c, domain.Product{
		Name:         req.Name,
		Description:  req.Description,
		SKU:          req.SKU,
		PriceRegular: req.PriceRegular,
		PriceSales:   req.PriceSales,
		PriceBengkel: req.PriceBengkel,
		Stock:        req.Stock,
		MinStock:     req.MinStock,
		Category:     req.Category,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.products.GetByID(c, c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

type updateProductReq struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	PriceRegular *decimal.Decimal `json:"price_regular"`
	PriceSales   *decimal.Decimal `json:"price_sales"`
	PriceBengkel *decimal.Decimal `json:"price_bengkel"`
	Stock        *int64           `json:"stock"`
	MinStock     *int64           `json:"min_stock"`
	Category     *string          `json:"category"`
}

// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param input body updateProductReq true "Fields to update"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	var req updateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.Update(c, c.Param("id"), service.UpdateProductParams{
		Name:         req.Name,
		Description:  req.Description,
		PriceRegular: req.PriceRegular,
		PriceSales:   req.PriceSales,
		PriceBengkel: req.PriceBengkel,
		Stock:        req.Stock,
		MinStock:     req.MinStock,
		Category:     req.Category,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.products.Delete(c, c.Param("id")); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param q query string false "Name contains"
// @Param category query string false "Category"
// @Success 200 {array} domain.Product
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	f := repository.ProductFilter{
		NameSubstring: c.Query("q"),
		Category:      c.Query("category"),
	}
	list, err := s.products.List(c, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary List products at or below minimum stock
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Product
// @Router /products/low-stock [get]
func (s *Server) listLowStock(c *gin.Context) {
	list, err := s.products.ListLowStock(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// Customer type handlers

type customerTypeReq struct {
	Name               string          `json:"name"`
	DisplayName        string          `json:"display_name"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// @Summary Create customer type
// @Tags customer-types
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body customerTypeReq true "Customer type"
// @Success 201 {object} domain.CustomerType
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /customer-types [post]
func (s *Server) createCustomerType(c *gin.Context) {
	var req customerTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ct, err := s.types.Create(c, domain.CustomerType{
		Name:               req.Name,
		DisplayName:        req.DisplayName,
		DiscountPercentage: req.DiscountPercentage,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ct)
}

// @Summary List customer types
// @Tags customer-types
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.CustomerType
// @Router /customer-types [get]
func (s *Server) listCustomerTypes(c *gin.Context) {
	list, err := s.types.List(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// Transaction handlers

// @Summary Submit a sale
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body domain.TransactionRequest true "Sale"
// @Success 201 {object} domain.Transaction
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /transactions [post]
func (s *Server) createTransaction(c *gin.Context) {
	var req domain.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	t, err := s.txns.Create(c, currentUser(c), req)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

// @Summary Get transaction by id
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} domain.Transaction
// @Failure 404 {object} map[string]string
// @Router /transactions/{id} [get]
func (s *Server) getTransaction(c *gin.Context) {
	t, err := s.txns.Get(c, c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary List transactions, newest first
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max results"
// @Success 200 {array} domain.Transaction
// @Router /transactions [get]
func (s *Server) listTransactions(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		if x, err := strconv.Atoi(v); err == nil && x > 0 {
			limit = x
		}
	}
	list, err := s.txns.List(c, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// Report handlers

// @Summary Daily sales report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} domain.ReportSummary
// @Failure 400 {object} map[string]string
// @Router /reports/daily [get]
func (s *Server) dailyReport(c *gin.Context) {
	r, err := s.reports.Daily(c, c.Query("date"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary Weekly sales report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param start_date query string true "Window start (YYYY-MM-DD)"
// @Success 200 {object} domain.ReportSummary
// @Failure 400 {object} map[string]string
// @Router /reports/weekly [get]
func (s *Server) weeklyReport(c *gin.Context) {
	r, err := s.reports.Weekly(c, c.Query("start_date"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary Monthly sales report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} domain.ReportSummary
// @Failure 400 {object} map[string]string
// @Router /reports/monthly [get]
func (s *Server) monthlyReport(c *gin.Context) {
	r, err := s.reports.Monthly(c, c.Query("month"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary Dashboard stats
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.DashboardStats
// @Router /dashboard/stats [get]
func (s *Server) dashboard(c *gin.Context) {
	d, err := s.reports.Dashboard(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}

func mapErrorToStatus(err error) int {
	var blocked *checkout.BlockedError
	switch {
	case errors.As(err, &blocked),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrNotEnoughStock),
		errors.Is(err, service.ErrUnknownProduct),
		errors.Is(err, service.ErrUnknownCustomerType),
		errors.Is(err, service.ErrInsufficientPayment),
		errors.Is(err, checkout.ErrUnknownProduct),
		errors.Is(err, checkout.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSKUTaken),
		errors.Is(err, service.ErrCustomerTypeTaken),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, checkout.ErrSubmissionInFlight),
		errors.Is(err, checkout.ErrSessionReset):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
