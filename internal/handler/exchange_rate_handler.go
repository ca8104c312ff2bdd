package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExchangeRateHandler struct {
	rateService service.ExchangeRateService
}

// NewExchangeRateHandler sets up the routing dependencies for reference rate endpoints
func NewExchangeRateHandler(rateService service.ExchangeRateService) *ExchangeRateHandler {
	return &ExchangeRateHandler{rateService: rateService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ExchangeRateHandler) RegisterRoutes(router *gin.RouterGroup) {
	rates := router.Group("/exchange-rates")
	{
		rates.GET("", middleware.RequireAuth(), h.ListExchangeRates)
		rates.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateExchangeRate)
		rates.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.UpdateExchangeRate)
		rates.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteExchangeRate)
	}
}

// CreateExchangeRate handles POST /exchange-rates
// @Summary      Create exchange rate
// @Description  Creates a reference exchange rate to PEN. Admin only.
// @Tags         exchange-rates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateExchangeRateRequest  true  "Create Exchange Rate Payload"
// @Success      201      {object}  response.Response{data=model.ExchangeRate}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /exchange-rates [post]
func (h *ExchangeRateHandler) CreateExchangeRate(c *gin.Context) {
	var req service.CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	idStr, _ := userID.(string)

	rate, err := h.rateService.Create(c.Request.Context(), idStr, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to save exchange rate"))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rate))
}

// ListExchangeRates handles GET /exchange-rates
// @Summary      List exchange rates
// @Description  Retrieves reference exchange rates, optionally filtered by currency
// @Tags         exchange-rates
// @Produce      json
// @Security     BearerAuth
// @Param        currency  query     string  false  "Currency code filter (e.g. USD)"
// @Success      200       {object}  response.Response{data=[]model.ExchangeRate}
// @Failure      500       {object}  response.Response
// @Router       /exchange-rates [get]
func (h *ExchangeRateHandler) ListExchangeRates(c *gin.Context) {
	rates, err := h.rateService.List(c.Request.Context(), c.Query("currency"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch exchange rates"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rates))
}

// UpdateExchangeRate handles PUT /exchange-rates/:id
// @Summary      Update exchange rate
// @Description  Updates a reference exchange rate. Admin only.
// @Tags         exchange-rates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                             true  "Exchange Rate ID"
// @Param        payload  body      service.UpdateExchangeRateRequest  true  "Update Exchange Rate Payload"
// @Success      200      {object}  response.Response{data=model.ExchangeRate}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /exchange-rates/{id} [put]
func (h *ExchangeRateHandler) UpdateExchangeRate(c *gin.Context) {
	var req service.UpdateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	userID, _ := c.Get("userID")
	idStr, _ := userID.(string)

	rate, err := h.rateService.Update(c.Request.Context(), idStr, c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Exchange rate not found"))
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to save exchange rate"))
		}
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rate))
}

// DeleteExchangeRate handles DELETE /exchange-rates/:id
// @Summary      Delete exchange rate
// @Description  Deletes a reference exchange rate. Admin only.
// @Tags         exchange-rates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Exchange Rate ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /exchange-rates/{id} [delete]
func (h *ExchangeRateHandler) DeleteExchangeRate(c *gin.Context) {
	userID, _ := c.Get("userID")
	idStr, _ := userID.(string)

	if err := h.rateService.Delete(c.Request.Context(), idStr, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Exchange rate not found"))
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to delete exchange rate"))
		}
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Exchange rate deleted successfully"))
}
