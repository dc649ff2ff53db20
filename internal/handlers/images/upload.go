package images

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/apperr"
	"github.com/Jeomhps/formation-admin/internal/handlers/common"
	imgstore "github.com/Jeomhps/formation-admin/internal/images"
)

// Upload stores every file sent in the "images" form field and returns
// their public URLs in order. Nothing is stored unless all files pass the
// checks.
func (h *Handler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		common.Fail(c, common.ValidationField("Invalid upload", formField, "multipart form expected"))
		return
	}
	files := form.File[formField]
	switch {
	case len(files) == 0:
		common.Fail(c, common.ValidationField("No files uploaded", formField, "is required"))
		return
	case len(files) > MaxFiles:
		common.Fail(c, common.ValidationField("Too many files", formField, fmt.Sprintf("at most %d files", MaxFiles)))
		return
	}

	types := make([]string, len(files))
	for i, fh := range files {
		if fh.Size > MaxFileSize {
			common.Fail(c, common.ValidationField("File too large", fh.Filename, "exceeds 10 MiB"))
			return
		}
		ct, err := contentType(fh)
		if err != nil {
			common.Fail(c, apperr.Internal(err, "read upload"))
			return
		}
		if !strings.HasPrefix(ct, "image/") {
			common.Fail(c, common.ValidationField("Only images are accepted", fh.Filename, "is "+ct))
			return
		}
		types[i] = ct
	}

	urls := make([]string, 0, len(files))
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			common.Fail(c, apperr.Internal(err, "read upload"))
			return
		}
		obj, err := h.store.Put(c.Request.Context(), filepath.Base(fh.Filename), types[i], f)
		_ = f.Close()
		if err != nil {
			common.Fail(c, err)
			return
		}
		urls = append(urls, imgstore.URL(h.baseURL, obj.ID))
	}
	c.JSON(http.StatusCreated, gin.H{"urls": urls})
}

// contentType sniffs the first bytes; the client-sent header is not trusted.
func contentType(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
