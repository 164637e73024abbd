package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dealtracker/internal/models"
	"dealtracker/internal/services"
)

// ProductHandlers handles HTTP requests for products and sales scripts
type ProductHandlers struct {
	products services.ProductService
	scripts  services.SalesScriptService
}

func NewProductHandlers(products services.ProductService, scripts services.SalesScriptService) *ProductHandlers {
	return &ProductHandlers{products: products, scripts: scripts}
}

func (h *ProductHandlers) ListProducts(c echo.Context) error {
	products, err := h.products.List(c.Request().Context(), scopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandlers) GetProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.products.Get(c.Request().Context(), scopeOf(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	var in services.ProductInput
	if err := bind(c, &in); err != nil {
		return err
	}
	product, err := h.products.Create(c.Request().Context(), scopeOf(c), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in services.ProductInput
	if err := bind(c, &in); err != nil {
		return err
	}
	product, err := h.products.Update(c.Request().Context(), scopeOf(c), id, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.Request().Context(), scopeOf(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListScripts supports ?channel= and ?search=.
func (h *ProductHandlers) ListScripts(c echo.Context) error {
	filter := models.ScriptFilter{
		Search:  c.QueryParam("search"),
		Channel: models.ScriptChannel(c.QueryParam("channel")),
	}
	scripts, err := h.scripts.List(c.Request().Context(), scopeOf(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scripts)
}

func (h *ProductHandlers) GetScript(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	script, err := h.scripts.Get(c.Request().Context(), scopeOf(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, script)
}

func (h *ProductHandlers) CreateScript(c echo.Context) error {
	var in services.SalesScriptInput
	if err := bind(c, &in); err != nil {
		return err
	}
	script, err := h.scripts.Create(c.Request().Context(), scopeOf(c), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, script)
}

func (h *ProductHandlers) UpdateScript(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in services.SalesScriptInput
	if err := bind(c, &in); err != nil {
		return err
	}
	script, err := h.scripts.Update(c.Request().Context(), scopeOf(c), id, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, script)
}

func (h *ProductHandlers) DeleteScript(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.scripts.Delete(c.Request().Context(), scopeOf(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
