package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"kasir/internal/checkout"
	"kasir/internal/domain"
	"kasir/internal/repository"
)

// boundSubmitter ties a checkout session to the cashier who opened it, so
// the committed sale is attributed even when the submission arrives later.
type boundSubmitter struct {
	server  *Server
	cashier domain.User
}

func (b boundSubmitter) Submit(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error) {
	return b.server.txns.Create(ctx, b.cashier, req)
}

func (s *Server) registerSessionRoutes(g *gin.RouterGroup) {
	sess := g.Group("/sessions")
	sess.POST("", s.openSession)
	sess.GET(":id", s.getSession)
	sess.DELETE(":id", s.closeSession)
	sess.POST(":id/items", s.addItem)
	sess.PUT(":id/items/:productId", s.setItemQuantity)
	sess.DELETE(":id/items/:productId", s.removeItem)
	sess.PUT(":id/customer-type", s.setCustomerType)
	sess.PUT(":id/discount", s.setDiscount)
	sess.PUT(":id/payment", s.setPayment)
	sess.POST(":id/submit", s.submitSession)
}

// @Summary Open a checkout session
// @Description Loads a catalog snapshot and starts an empty cart for the
// @Description authenticated cashier.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 201 {object} checkout.View
// @Router /sessions [post]
func (s *Server) openSession(c *gin.Context) {
	products, err := s.products.List(c, repository.ProductFilter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	types, err := s.types.List(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	catalog := checkout.NewCatalog(products, types)
	session := s.sessions.Open(catalog, boundSubmitter{server: s, cashier: currentUser(c)})
	c.JSON(http.StatusCreated, session.Snapshot())
}

// @Summary Session snapshot
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} checkout.View
// @Failure 404 {object} map[string]string
// @Router /sessions/{id} [get]
func (s *Server) getSession(c *gin.Context) {
	session, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

// @Summary Close a session
// @Tags sessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (s *Server) closeSession(c *gin.Context) {
	s.sessions.Close(c.Param("id"))
	c.Status(http.StatusNoContent)
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// @Summary Add product to cart
// @Description Adding an already-present product increases its quantity.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param input body addItemReq true "Item"
// @Success 200 {object} checkout.View
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/items [post]
func (s *Server) addItem(c *gin.Context) {
	session, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := session.AddProduct(req.ProductID, req.Quantity); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

type setQuantityReq struct {
	Quantity int64 `json:"quantity"`
}

// @Summary Set cart line quantity
// @Description Sets an absolute quantity; zero or negative removes the line.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param productId path string true "Product ID"
// @Param input body setQuantityReq true "Quantity"
// @Success 200 {object} checkout.View
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/items/{productId} [put]
func (s *Server) setItemQuantity(c *gin.Context) {
	session, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req setQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	session.SetQuantity(c.Param("productId"), req.Quantity)
	c.JSON(http.StatusOK, session.Snapshot())
}

// @Summary Remove cart line
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param productId path string true "Product ID"
// @Success 200 {object} checkout.View
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/items/{productId} [delete]
func (s *Server) removeItem(c *gin.Context) {
	session, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	session.RemoveProduct(c.Param("productId"))
	c.JSON(http.StatusOK, session.Snapshot())
}

type setCustomerTypeReq struct {
	CustomerType string `json:"customer_type"`
}

// @Summary Select customer type
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param input body setCustomerTypeReq true "Customer type"
// @Success 200 {object} checkout.View
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/customer-type [put]
func (s *Server) setCustomerType(c *gin.Context) {
	session, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req setCustomerTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	session.SelectCustomerType(req.CustomerType)
	c.JSON(http.StatusOK, session.Snapshot())
}

type setDiscountReq struct {
	Mode  checkout.DiscountMode `json:"mode"`
	Value decimal.Decimal       `json:"value"`
}

// @Summary Set manual discount
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param input body setDiscountReq true "Discount"
// @Success 200 {object} checkout.View
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/discount [put]
func (s *Server) setDiscount(c *gin.Context) {
	session, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req setDiscountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	session.SetManualDiscount(checkout.ManualDiscount{Mode: req.Mode, Value: req.Value})
	c.JSON(http.StatusOK, session.Snapshot())
}

type setPaymentReq struct {
	Method domain.PaymentMethod `json:"method"`
	Amount decimal.Decimal      `json:"amount"`
}

// @Summary Set tendered payment
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param input body setPaymentReq true "Payment"
// @Success 200 {object} checkout.View
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/payment [put]
func (s *Server) setPayment(c *gin.Context) {
	session, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req setPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	session.SetPayment(checkout.PaymentIntent{Method: req.Method, Amount: req.Amount})
	c.JSON(http.StatusOK, session.Snapshot())
}

// @Summary Submit the session's cart as a sale
// @Description On success the cart resets for the next customer. On any
// @Description failure the session is left untouched for retry.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 201 {object} domain.Transaction
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /sessions/{id}/submit [post]
func (s *Server) submitSession(c *gin.Context) {
	session, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	txn, err := session.Submit(c)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, txn)
}
