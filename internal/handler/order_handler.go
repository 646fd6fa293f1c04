package handler

import (
	"net/http"

	"audioshop/internal/apperr"
	"audioshop/internal/middleware"
	repo "audioshop/internal/repository"
	"audioshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderCreateRequest struct {
	Products []usecase.LineInput `json:"products"`
}

type AddLineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type UpdateLineRequest struct {
	Quantity int64 `json:"quantity"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, secret string, users repo.UserRepository) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(secret))
	g.Use(middleware.UserGuard(users))

	g.POST("", h.create)
	g.GET("/current", h.current)
	g.GET("/completed", h.completed)
	g.GET("/:id", h.detail)
	g.DELETE("/:id", h.delete)
	g.PUT("/:id/status", h.updateStatus)
	g.POST("/:id/products", h.addLine)
	g.PUT("/:id/products/:productId", h.updateLine)
	g.DELETE("/:id/products/:productId", h.removeLine)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	//bodyは省略可（空の注文を作る）
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Create(c.Request().Context(), userID, req.Products)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) current(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetCurrent(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "no active order"})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) completed(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetCompleted(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	o, err := h.ownOrder(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) delete(c echo.Context) error {
	o, err := h.ownOrder(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.Request().Context(), o.ID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	o, err := h.ownOrder(c)
	if err != nil {
		return writeError(c, err)
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), o.ID, req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) addLine(c echo.Context) error {
	o, err := h.ownOrder(c)
	if err != nil {
		return writeError(c, err)
	}

	var req AddLineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	line, err := h.uc.AddLine(c.Request().Context(), o.ID, req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, line)
}

func (h *OrderHandler) updateLine(c echo.Context) error {
	o, err := h.ownOrder(c)
	if err != nil {
		return writeError(c, err)
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	var req UpdateLineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	line, err := h.uc.UpdateLineQuantity(c.Request().Context(), o.ID, productID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, line)
}

func (h *OrderHandler) removeLine(c echo.Context) error {
	o, err := h.ownOrder(c)
	if err != nil {
		return writeError(c, err)
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	if err := h.uc.RemoveLine(c.Request().Context(), o.ID, productID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// :idの注文を取得。他人の注文は「存在しない扱い」にする
func (h *OrderHandler) ownOrder(c echo.Context) (usecase.OrderOutput, error) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return usecase.OrderOutput{}, apperr.NotFound("order not found")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return usecase.OrderOutput{}, apperr.Validation("invalid id")
	}

	o, err := h.uc.GetByID(c.Request().Context(), id)
	if err != nil {
		return usecase.OrderOutput{}, err
	}
	if o.UserID != userID {
		return usecase.OrderOutput{}, apperr.NotFound("order not found")
	}
	return o, nil
}
