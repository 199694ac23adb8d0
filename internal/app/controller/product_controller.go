package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/internal/app/service"
	apperrors "github.com/ikkim/shopfront/internal/errors"
	"github.com/ikkim/shopfront/internal/gateway"
)

const maxProductPageSize = 100

type ProductController struct {
	catalog *service.Catalog
}

func NewProductController(catalog *service.Catalog) *ProductController {
	return &ProductController{
		catalog: catalog,
	}
}

// GetAllProducts browses the upstream catalog.
// GET /api/v1/products?page=&limit=&search=&seller_id=
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxProductPageSize {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "limit must be between 1 and 100")
		return
	}

	products, err := ctrl.catalog.List(upstreamContext(c), gateway.ProductQuery{
		Page:     page,
		Limit:    limit,
		Search:   c.Query("search"),
		SellerID: c.Query("seller_id"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
		"page":     page,
		"limit":    limit,
	})
}

// GetProductByID loads one product, making it available to the cart.
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	product, err := ctrl.catalog.Fetch(upstreamContext(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProductUnavailable) {
			apperrors.NotFound(c, apperrors.CartProductUnavailable, "Product not found")
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
