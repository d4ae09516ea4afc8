package admins

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mag8888/vital-sub000/database"
	"github.com/mag8888/vital-sub000/models"
	"github.com/mag8888/vital-sub000/utils"
)

type ProductView struct {
	models.Product
	ImageURL string `json:"image_url,omitempty"`
}

func productView(p *models.Product) ProductView {
	v := ProductView{Product: *p}
	if p.ImageKey != nil && *p.ImageKey != "" {
		if url, err := utils.GenerateSignedURL(*p.ImageKey, 3600); err == nil {
			v.ImageURL = url
		}
	}
	return v
}

// GET /v1/admin/products
func ListProducts(w http.ResponseWriter, r *http.Request) {
	var products []models.Product
	if err := database.DB.Order("id ASC").Find(&products).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, productView(&products[i]))
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"products": views,
		},
	})
}

// GET /v1/admin/products/{id}
func GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid product id"})
		return
	}
	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Product not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: productView(&product)})
}

// readProductImage pulls the optional "image" part from a multipart form,
// validates the extension and returns the bytes plus the cleaned extension.
func readProductImage(r *http.Request) ([]byte, string, error) {
	file, handler, err := r.FormFile("image")
	if err != nil || handler == nil {
		return nil, "", nil
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return nil, "", fmt.Errorf("image must be JPG, PNG or WEBP")
	}
	if handler.Size > 10<<20 {
		return nil, "", fmt.Errorf("image must be at most 10MB")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image")
	}
	detected := http.DetectContentType(data[:min(len(data), 512)])
	switch detected {
	case "image/jpeg", "image/png", "image/webp":
	default:
		return nil, "", fmt.Errorf("image must be JPG, PNG or WEBP")
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return data, ext, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// POST /v1/admin/products (multipart)
func CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid multipart form"})
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Title is required"})
		return
	}
	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Price must be greater than 0"})
		return
	}
	status := r.FormValue("status")
	if status != "Active" && status != "Inactive" {
		status = "Active"
	}

	product := models.Product{
		Title:  title,
		Price:  utils.RoundFloat(price, 2),
		Status: status,
	}
	if desc := r.FormValue("description"); desc != "" {
		product.Description = &desc
	}

	imageBytes, ext, err := readProductImage(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	if err := database.DB.Create(&product).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create product"})
		return
	}

	if imageBytes != nil {
		key := fmt.Sprintf("product_%d_%d%s", product.ID, time.Now().UnixNano(), ext)
		if err := utils.UploadToS3(key, bytes.NewReader(imageBytes)); err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to upload image"})
			return
		}
		database.DB.Model(&product).Update("image_key", key)
		product.ImageKey = &key
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Product created", Data: productView(&product)})
}

// PUT /v1/admin/products/{id} (multipart)
func UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid product id"})
		return
	}
	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Product not found"})
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid multipart form"})
		return
	}

	updates := map[string]interface{}{}
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		updates["title"] = title
	}
	if priceStr := r.FormValue("price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Price must be greater than 0"})
			return
		}
		updates["price"] = utils.RoundFloat(price, 2)
	}
	if desc := r.FormValue("description"); desc != "" {
		updates["description"] = desc
	}
	if status := r.FormValue("status"); status == "Active" || status == "Inactive" {
		updates["status"] = status
	}

	imageBytes, ext, err := readProductImage(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}
	if imageBytes != nil {
		if product.ImageKey != nil && *product.ImageKey != "" {
			_ = utils.DeleteFromS3(*product.ImageKey)
		}
		key := fmt.Sprintf("product_%d_%d%s", product.ID, time.Now().UnixNano(), ext)
		if err := utils.UploadToS3(key, bytes.NewReader(imageBytes)); err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to upload image"})
			return
		}
		updates["image_key"] = key
	}

	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nothing to update"})
		return
	}
	if err := database.DB.Model(&product).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update product"})
		return
	}

	database.DB.First(&product, id)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Product updated", Data: productView(&product)})
}

// DELETE /v1/admin/products/{id}
func DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid product id"})
		return
	}
	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Product not found"})
		return
	}

	if product.ImageKey != nil && *product.ImageKey != "" {
		_ = utils.DeleteFromS3(*product.ImageKey)
	}
	if err := database.DB.Delete(&product).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to delete product"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Product deleted"})
}
