package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	txnService service.TransactionService
}

// NewTransactionHandler sets up the routing dependencies for transaction endpoints
func NewTransactionHandler(txnService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txnService: txnService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/submit-transaction", middleware.RequireAuth(), h.SubmitTransaction)
	router.GET("/transactions", middleware.RequireAuth(), h.ListTransactions)
	router.GET("/transaction/:id", middleware.RequireAuth(), h.GetTransactionByID)
	router.POST("/transaction/approve/:id", middleware.RequireRole(model.RoleFinance, model.RoleAdmin), h.ApproveTransaction)
	router.POST("/transaction/reject/:id", middleware.RequireRole(model.RoleFinance, model.RoleAdmin), h.RejectTransaction)
}

// SubmitTransaction handles POST /submit-transaction to create a PENDING deal
// @Summary      Submit transaction
// @Description  Creates a new transaction in PENDING state with all derived financial fields computed
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitTransactionRequest  true  "Submit Transaction Payload"
// @Success      201      {object}  response.Response{data=service.TransactionResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /submit-transaction [post]
func (h *TransactionHandler) SubmitTransaction(c *gin.Context) {
	var req service.SubmitTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	idStr, _ := userID.(string)

	txn, err := h.txnService.Submit(c.Request.Context(), idStr, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateOrderID):
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to save transaction"))
		}
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, txn))
}

// ListTransactions handles GET /transactions with pagination and status filter
// @Summary      List transactions
// @Description  Retrieves a paginated list of transactions, newest submissions first
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Filter by approval status (PENDING, APPROVED, REJECTED)"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        per_page  query     int     false  "Items per page (default 30, max 100)"
// @Success      200       {object}  response.Response{data=service.TransactionListResponse}
// @Failure      500       {object}  response.Response
// @Router       /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	params := pagination.Parse(c)
	status := c.Query("status")

	list, err := h.txnService.List(c.Request.Context(), status, params.Page, params.PerPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch transactions"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, list))
}

// GetTransactionByID handles GET /transaction/:id
// @Summary      Get transaction by ID
// @Description  Fetch a single transaction with its fixed costs and recurring services
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transaction ID"
// @Success      200  {object}  response.Response{data=service.TransactionResponse}
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /transaction/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	txn, err := h.txnService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Transaction not found"))
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch transaction"))
		}
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, txn))
}

// ApproveTransaction handles POST /transaction/approve/:id
// @Summary      Approve transaction
// @Description  Moves a PENDING transaction to APPROVED. Finance or admin only.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transaction ID"
// @Success      200  {object}  response.Response{data=service.TransactionResponse}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /transaction/approve/{id} [post]
func (h *TransactionHandler) ApproveTransaction(c *gin.Context) {
	userID, _ := c.Get("userID")
	idStr, _ := userID.(string)

	txn, err := h.txnService.Approve(c.Request.Context(), c.Param("id"), idStr)
	if err != nil {
		h.respondTransitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, txn))
}

// RejectTransaction handles POST /transaction/reject/:id
// @Summary      Reject transaction
// @Description  Moves a PENDING transaction to REJECTED with a mandatory note. Finance or admin only.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Transaction ID"
// @Param        payload  body      service.RejectTransactionRequest  true  "Rejection Note"
// @Success      200      {object}  response.Response{data=service.TransactionResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /transaction/reject/{id} [post]
func (h *TransactionHandler) RejectTransaction(c *gin.Context) {
	var req service.RejectTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	userID, _ := c.Get("userID")
	idStr, _ := userID.(string)

	txn, err := h.txnService.Reject(c.Request.Context(), c.Param("id"), idStr, req.Note)
	if err != nil {
		h.respondTransitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, txn))
}

// respondTransitionError maps workflow errors onto the status taxonomy
func (h *TransactionHandler) respondTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Transaction not found"))
	case errors.Is(err, service.ErrNotPending):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.Is(err, service.ErrRejectionNoteRequired):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "A rejection note is required"))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to update transaction"))
	}
}
