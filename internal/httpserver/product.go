package httpserver

import (
	"net/http"

	productrepo "market-api/internal/repository/product"
	"market-api/internal/service/product"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createProductRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price" binding:"required"`
	ImageURL    string            `json:"imageUrl"`
	Category    string            `json:"category"`
	PhotoURLs   []string          `json:"photoUrls"`
	Specs       map[string]string `json:"specifications"`
}

func createProductHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		in := productrepo.CreateProductInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			ImageURL:    req.ImageURL,
			Category:    req.Category,
			PhotoURLs:   req.PhotoURLs,
		}
		for name, value := range req.Specs {
			in.Specs = append(in.Specs, productrepo.SpecInput{Name: name, Value: value})
		}
		created, err := products.Create(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func listProductsHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := products.List(c.Request.Context(), c.Query("category"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": list, "count": len(list)})
	}
}

func getProductHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := products.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"imageUrl"`
	Category    *string          `json:"category"`
}

func updateProductHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updated, err := products.Update(c.Request.Context(), c.Param("id"), productrepo.UpdateProductInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			ImageURL:    req.ImageURL,
			Category:    req.Category,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func deleteProductHandler(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := products.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
