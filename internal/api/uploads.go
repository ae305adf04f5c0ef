package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// UploadHandlers serves completed uploads back as raw bytes (spec.md §6
// GET /uploads/:filename). Static serving is explicitly named an external
// collaborator in spec.md §1, but the engine still needs to expose the
// stable relative URL it produces, so this handler exists purely to
// resolve filenames to files beneath a single trusted directory.
type UploadHandlers struct {
	dir string
}

// NewUploadHandlers roots upload serving at dir.
func NewUploadHandlers(dir string) *UploadHandlers {
	return &UploadHandlers{dir: dir}
}

// ServeFile returns the raw bytes for a previously completed upload,
// rejecting any filename that would escape the uploads directory.
func (h *UploadHandlers) ServeFile(c *gin.Context) {
	name := c.Param("filename")
	name = strings.TrimPrefix(name, "/")

	clean := filepath.Clean(name)
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filename"})
		return
	}

	c.File(filepath.Join(h.dir, clean))
}
