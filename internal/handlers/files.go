package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/fileflow/internal/files"
)

type FileHandler struct {
	registry *files.Registry
}

func NewFileHandler(registry *files.Registry) *FileHandler {
	return &FileHandler{registry: registry}
}

func (h *FileHandler) List(c *gin.Context) {
	entries, err := h.registry.List()
	if err != nil {
		log.Printf("Failed to list files: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list files"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Upload принимает пакет файлов. Отказ одного файла не прерывает
// остальные: ответ различает полный успех (200), частичный (207)
// и полный отказ (400).
func (h *FileHandler) Upload(c *gin.Context) {
	if c.Request.ContentLength > files.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload exceeds 100MB limit"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, files.MaxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload exceeds 100MB limit"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		return
	}

	headers := form.File["file"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		return
	}

	var uploaded []string
	var uploadErrors []string

	for _, fh := range headers {
		if fh.Filename == "" {
			uploadErrors = append(uploadErrors, "No selected file")
			continue
		}

		src, err := fh.Open()
		if err != nil {
			uploadErrors = append(uploadErrors, fmt.Sprintf("Failed to save %s: %v", fh.Filename, err))
			continue
		}

		name, err := h.registry.Store(fh.Filename, src)
		src.Close()
		if err != nil {
			if errors.Is(err, files.ErrTypeNotAllowed) {
				uploadErrors = append(uploadErrors, fmt.Sprintf("File type not allowed: %s", fh.Filename))
			} else {
				uploadErrors = append(uploadErrors, fmt.Sprintf("Failed to save %s: %v", fh.Filename, err))
			}
			continue
		}

		uploaded = append(uploaded, name)
	}

	switch {
	case len(uploadErrors) == 0:
		c.JSON(http.StatusOK, gin.H{
			"message": "Files uploaded successfully!",
			"files":   uploaded,
		})
	case len(uploaded) > 0:
		c.JSON(http.StatusMultiStatus, gin.H{
			"message": "Some files failed to upload",
			"files":   uploaded,
			"errors":  uploadErrors,
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "No files were uploaded",
			"errors":  uploadErrors,
		})
	}
}

func (h *FileHandler) Download(c *gin.Context) {
	name := c.Param("name")

	full, err := h.registry.Resolve(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	c.FileAttachment(full, filepath.Base(full))
}
