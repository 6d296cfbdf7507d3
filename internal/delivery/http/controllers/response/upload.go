package response

import (
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

type FormUpload struct {
	Filename    string
	File        multipart.File
	Size        int64
	ContentType string
}

// FormFile opens the multipart file under field. On failure it writes a 400
// and returns false; on success the caller closes File.
func FormFile(c *gin.Context, field string, maxBytes int64) (*FormUpload, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": field + " is required"})
		return nil, false
	}
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file is too large"})
		return nil, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return nil, false
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileHeader.Filename))); byExt != "" {
			contentType = byExt
		}
	}
	return &FormUpload{
		Filename:    fileHeader.Filename,
		File:        file,
		Size:        fileHeader.Size,
		ContentType: contentType,
	}, true
}
