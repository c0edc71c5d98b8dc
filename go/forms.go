package communityserver

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	pettypes "github.com/Apurer/pet-community/internal/domains/pets/application/types"
	"github.com/Apurer/pet-community/internal/shared/upload"
)

const multipartMemory = 8 << 20

// maxPetRows bounds the pet_photo[i] index a form may use.
const maxPetRows = 100

const (
	msgUploadTooLarge   = "The submitted files are too large. Please choose smaller images."
	msgUploadIncomplete = "The upload could not be read. Please try again."
)

// parseMultipart reads a multipart form within the request size limit. The
// returned message is meant for display.
func (s *Server) parseMultipart(c *gin.Context) (string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxRequestBytes)
	err := c.Request.ParseMultipartForm(multipartMemory)
	switch {
	case err == nil:
		return "", true
	case errors.Is(err, http.ErrNotMultipart):
		// A form without files posts urlencoded; the values are still usable.
		return "", c.Request.ParseForm() == nil
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return msgUploadTooLarge, false
		}
		return msgUploadIncomplete, false
	}
}

// formFile describes the single file input name.
func formFile(c *gin.Context, name string) upload.File {
	form := c.Request.MultipartForm
	if form == nil || len(form.File[name]) == 0 {
		return upload.None
	}
	return upload.FromHeader(form.File[name][0])
}

// petRows pairs the repeated pet fields with their photo inputs. Photo
// inputs are numbered pet_photo[i] so a row without a file keeps its
// position; plain pet_photo[] inputs are paired by position as a fallback.
// A row that only carries a photo still counts.
func petRows(c *gin.Context) []pettypes.RowInput {
	fields := pettypes.RowFields{
		Names:          c.PostFormArray("pet_name[]"),
		Breeds:         c.PostFormArray("pet_breed[]"),
		Ages:           c.PostFormArray("pet_age[]"),
		ExistingPhotos: c.PostFormArray("existing_pet_photo[]"),
	}
	total := max(len(fields.Names), len(fields.Breeds), len(fields.Ages), len(fields.ExistingPhotos), photoRows(c.Request.MultipartForm))
	return pettypes.ZipRows(fields, petUploads(c.Request.MultipartForm, total))
}

func petUploads(form *multipart.Form, rows int) []upload.File {
	uploads := make([]upload.File, rows)
	for i := range uploads {
		uploads[i] = upload.None
	}
	if form == nil {
		return uploads
	}
	indexed := false
	for i := range uploads {
		if headers := form.File[fmt.Sprintf("pet_photo[%d]", i)]; len(headers) > 0 {
			uploads[i] = upload.FromHeader(headers[0])
			indexed = true
		}
	}
	if indexed {
		return uploads
	}
	for i, fh := range form.File["pet_photo[]"] {
		if i >= len(uploads) {
			break
		}
		uploads[i] = upload.FromHeader(fh)
	}
	return uploads
}

// photoRows counts the rows the photo inputs alone describe.
func photoRows(form *multipart.Form) int {
	if form == nil {
		return 0
	}
	rows := min(len(form.File["pet_photo[]"]), maxPetRows)
	for name, headers := range form.File {
		raw, ok := strings.CutPrefix(name, "pet_photo[")
		if !ok || len(headers) == 0 {
			continue
		}
		raw, ok = strings.CutSuffix(raw, "]")
		if !ok {
			continue
		}
		if i, err := strconv.Atoi(raw); err == nil && i >= 0 && i < maxPetRows {
			rows = max(rows, i+1)
		}
	}
	return rows
}
