package handler

import (
	"net/http"
	"strconv"

	"audioshop/internal/domain/model"
	"audioshop/internal/middleware"
	"audioshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /products のAPI
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// PATCHで受けるフィールド。無いキーは変更しない
type ProductPatchRequest struct {
	Name        *string          `json:"product_name"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Description *string          `json:"product_desc"`
	Features    *[]string        `json:"features"`
}

func (r ProductPatchRequest) toPatch() model.ProductPatch {
	p := model.ProductPatch{
		Name:        r.Name,
		Price:       r.Price,
		Description: r.Description,
		Features:    r.Features,
	}
	if r.Category != nil {
		c := model.Category(*r.Category)
		p.Category = &c
	}
	return p
}

// 参照は公開、変更はADMINだけ
func (h *ProductHandler) RegisterRoutes(e *echo.Echo, secret string) {
	e.GET("/products", h.list)
	e.GET("/products/top", h.topSelling)
	e.GET("/products/category/:category", h.byCategory)
	e.GET("/products/:id", h.detail)

	admin := e.Group("/products")
	admin.Use(middleware.AuthJWT(secret))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("", h.create)
	admin.PATCH("/:id", h.update)
	admin.DELETE("/:id", h.delete)
}

func (h *ProductHandler) list(c echo.Context) error {
	items, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	p, err := h.uc.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) byCategory(c echo.Context) error {
	items, err := h.uc.GetByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// limit（default 5）
func (h *ProductHandler) topSelling(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > 100 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	items, err := h.uc.GetTopSelling(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) create(c echo.Context) error {
	var req usecase.CreateProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) update(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	var req ProductPatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.Update(c.Request().Context(), id, req.toPatch())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
