package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Catmanpooh/oort-hackathon/internal/models"
	"github.com/Catmanpooh/oort-hackathon/internal/services"
)

const maxUploadMemory = 32 << 20

// Registry is the backend behaviour the item routes depend on.
type Registry interface {
	StoreAssets(projectName string, assets []services.Asset) services.StoreResult
	RegisterObject(ctx context.Context, req models.ObjectURIRequest) (string, error)
	ListUserItems(address string) ([]models.MarketItem, error)
	ListObjects(prefix string) ([]string, error)
	DeleteItem(ctx context.Context, projectName, itemName string) error
}

type ItemsHandler struct {
	registry Registry
}

func NewItemsHandler(registry Registry) *ItemsHandler {
	return &ItemsHandler{registry: registry}
}

// Create stores every uploaded file under the project_name folder.
// 201 when all files were stored, 502 when any failed.
// @Summary     Upload project assets
// @Description Stores every file part under the project_name folder of the storage bucket. Files are read in field-name order and an existing object with the same key is replaced.
// @Tags        items
// @Accept      multipart/form-data
// @Produce     json
// @Param       project_name formData string true "Project folder (no path separators or ..)"
// @Param       file_image formData file true "Project image"
// @Param       file_json formData file false "Project metadata JSON"
// @Success     201 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.UploadResponse
// @Router      /create [post]
func (h *ItemsHandler) Create(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}
	form := c.Request.MultipartForm
	defer form.RemoveAll()

	projectName := strings.TrimSpace(firstValue(form.Value["project_name"]))
	if projectName == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "project_name is required"})
		return
	}
	if !validFolderName(projectName) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid project_name",
			Message: "project_name must not contain path separators or ..",
		})
		return
	}

	assets, err := readAssets(form)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read uploaded file",
			Message: err.Error(),
		})
		return
	}
	if len(assets) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no files provided"})
		return
	}

	result := h.registry.StoreAssets(projectName, assets)
	status := http.StatusCreated
	if result.Failed > 0 {
		status = http.StatusBadGateway
	}
	c.JSON(status, models.UploadResponse{ProjectName: result.ProjectName, Messages: result.Messages})
}

// ObjectURI registers a stored object and answers with its signed URL.
// @Summary     Register a stored object
// @Description Signs the object at project_name/object_name, records it as a market item for the address and returns the signed URL.
// @Tags        items
// @Accept      json
// @Produce     json
// @Param       request body models.ObjectURIRequest true "Registration document"
// @Success     200 {string} string "Signed object URL"
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /object_uri [post]
func (h *ItemsHandler) ObjectURI(c *gin.Context) {
	var req models.ObjectURIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	url, err := h.registry.RegisterObject(c.Request.Context(), req)
	switch {
	case errors.Is(err, services.ErrObjectNotSigned):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "object not found", Message: err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to register object", Message: err.Error()})
	default:
		c.JSON(http.StatusOK, url)
	}
}

// @Summary     List a wallet's items
// @Tags        items
// @Produce     json
// @Param       address path string true "Wallet address"
// @Success     200 {array} models.MarketItem
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /user_nft_items/{address} [get]
func (h *ItemsHandler) UserItems(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "address is required"})
		return
	}

	items, err := h.registry.ListUserItems(address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list items", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListAll answers with the object names stored under a project folder.
// @Summary     List stored objects
// @Tags        items
// @Accept      json
// @Produce     json
// @Param       request body models.ListObjectsRequest true "Folder prefix"
// @Success     200 {array} string
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /list_all [post]
func (h *ItemsHandler) ListAll(c *gin.Context) {
	var req models.ListObjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	names, err := h.registry.ListObjects(req.Name)
	switch {
	case errors.Is(err, services.ErrNoObjects):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no objects found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list objects", Message: err.Error()})
	default:
		c.JSON(http.StatusOK, names)
	}
}

// @Summary     Delete a stored object
// @Description Removes project_name/item_name from the bucket. Requires an admin token when ADMIN_JWT_SECRET is set.
// @Tags        items
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.DeleteItemRequest true "Object to delete"
// @Success     200 {string} string "Success deleting item"
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /delete_item [delete]
func (h *ItemsHandler) DeleteItem(c *gin.Context) {
	var req models.DeleteItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	if err := h.registry.DeleteItem(c.Request.Context(), req.ProjectName, req.ItemName); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to delete item", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, "Success deleting item")
}

// readAssets reads every file part, ordered by field name.
func readAssets(form *multipart.Form) ([]services.Asset, error) {
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var assets []services.Asset
	for _, field := range fields {
		for _, fh := range form.File[field] {
			data, err := readPart(fh)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fh.Filename, err)
			}
			assets = append(assets, services.Asset{
				FileName:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	return assets, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// validFolderName reports whether name is a single storage folder segment.
func validFolderName(name string) bool {
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
