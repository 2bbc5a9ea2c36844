// internal/interfaces/http/handlers/product.go
package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/brewflow-storefront/internal/domain/product"
	"github.com/your-org/brewflow-storefront/internal/domain/upload"
	"github.com/your-org/brewflow-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"github.com/your-org/brewflow-storefront/internal/pkg/notify"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	deps *Dependencies
}

// NewProductHandler creates a new product handler
func NewProductHandler(deps *Dependencies) *ProductHandler {
	return &ProductHandler{deps: deps}
}

// GetProducts handles GET /products?search=
func (h *ProductHandler) GetProducts(c *gin.Context) {
	v := h.deps.visitor(c)

	res := h.deps.Products.ListPublic(c.Request.Context())
	products := product.FilterByName(res.Data, c.Query("search"))

	respond(c, http.StatusOK, v, "Products retrieved successfully", gin.H{
		"products":   h.deps.Products.WithDisplayImages(products),
		"categories": product.Categories,
	})
}

// AdminListProducts handles GET /admin/products
func (h *ProductHandler) AdminListProducts(c *gin.Context) {
	v := h.deps.visitor(c)

	res := h.deps.Products.ListAdmin(c.Request.Context(), middleware.GetAdminToken(c))
	if !res.Success {
		h.failResult(c, v, "Failed to load products", res.Message, res.ReauthRequired)
		return
	}

	respond(c, http.StatusOK, v, "Products retrieved successfully", h.deps.Products.WithDisplayImages(res.Data))
}

// CreateProduct handles POST /admin/products (multipart form with an image file)
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	v := h.deps.visitor(c)

	in, file, err := bindProductInput(c)
	if err != nil {
		fail(c, v, "Invalid product", err)
		return
	}
	if file == nil {
		fail(c, v, upload.MsgNoImage, apperr.Validation("product.Create", "Please select a valid image before submitting"))
		return
	}

	img, err := h.deps.Uploads.FromFileHeader(file)
	if err != nil {
		fail(c, v, "Failed to process image", err)
		return
	}
	in.Image = img.Ciphertext

	res := h.deps.Products.Create(c.Request.Context(), middleware.GetAdminToken(c), in)
	if !res.Success {
		h.failResult(c, v, "Error", res.Message, res.ReauthRequired)
		return
	}

	v.notices.Notify(c.Request.Context(), notify.Success("Success", res.Message))
	respond(c, http.StatusCreated, v, res.Message, res.Data)
}

// UpdateProduct handles PUT /admin/products/:id. A new image file replaces
// the stored one; otherwise the submitted image field is kept as is.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	v := h.deps.visitor(c)

	in, file, err := bindProductInput(c)
	if err != nil {
		fail(c, v, "Invalid product", err)
		return
	}
	if file != nil {
		img, err := h.deps.Uploads.FromFileHeader(file)
		if err != nil {
			fail(c, v, "Failed to process image", err)
			return
		}
		in.Image = img.Ciphertext
	}

	res := h.deps.Products.Update(c.Request.Context(), middleware.GetAdminToken(c), c.Param("id"), in)
	if !res.Success {
		h.failResult(c, v, "Update failed", res.Message, res.ReauthRequired)
		return
	}

	v.notices.Notify(c.Request.Context(), notify.Success("Product updated", res.Message))
	respond(c, http.StatusOK, v, res.Message, res.Data)
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	v := h.deps.visitor(c)

	res := h.deps.Products.Delete(c.Request.Context(), middleware.GetAdminToken(c), c.Param("id"))
	if !res.Success {
		h.failResult(c, v, "Delete failed", res.Message, res.ReauthRequired)
		return
	}

	v.notices.Notify(c.Request.Context(), notify.Success("Product deleted", res.Message))
	respond(c, http.StatusOK, v, res.Message, nil)
}

// failResult turns an unsuccessful catalog Result into a response. A rejected
// token is cleared so the next admin request asks for a login.
func (h *ProductHandler) failResult(c *gin.Context, v *visitor, title, message string, reauth bool) {
	var err error
	if reauth {
		if rerr := v.auth.Reject(c.Request.Context()); rerr != nil {
			v.logger.WithError(rerr).Warn("Failed to clear rejected admin token")
		}
		err = apperr.Authorization("product", message)
	} else {
		err = &apperr.Error{Kind: apperr.KindTransport, Op: "product", Message: message}
	}
	fail(c, v, title, err)
}

// bindProductInput reads and validates a product from a multipart form or a JSON body
func bindProductInput(c *gin.Context) (product.Input, *multipart.FileHeader, error) {
	in, file, err := readProductInput(c)
	if err != nil {
		return in, nil, err
	}
	if err := in.Validate(); err != nil {
		return in, nil, apperr.Validation("product.Bind", err.Error())
	}
	return in, file, nil
}

func readProductInput(c *gin.Context) (product.Input, *multipart.FileHeader, error) {
	const op = "product.Bind"

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var in product.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, nil, apperr.Validation(op, "Invalid request data")
		}
		return in, nil, nil
	}

	in := product.Input{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Image:       c.PostForm("image"),
		Description: c.PostForm("description"),
		Category:    product.Category(c.PostForm("category")),
	}
	if raw := strings.TrimSpace(c.PostForm("price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, nil, apperr.Validation(op, "price must be a number")
		}
		in.Price = price
	}

	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, nil
	}
	if err != nil {
		return in, nil, apperr.Validation(op, "Invalid image upload")
	}
	return in, file, nil
}
