package communityserver

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-community/internal/shared/upload"
)

func multipartForm(t *testing.T, files map[string][]string) *multipart.Form {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for field, names := range files {
		for _, name := range names {
			part, err := w.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = part.Write([]byte("data"))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm
}

func TestPetUploadsPairsNumberedInputs(t *testing.T) {
	form := multipartForm(t, map[string][]string{
		"pet_photo[1]": {"b.png"},
		"pet_photo[3]": {"d.png"},
	})
	uploads := petUploads(form, 3)
	require.Len(t, uploads, 3)
	assert.Equal(t, upload.StatusNone, uploads[0].Status)
	assert.Equal(t, "b.png", uploads[1].Filename)
	assert.Equal(t, upload.StatusReceived, uploads[1].Status)
	assert.Equal(t, upload.StatusNone, uploads[2].Status)
}

func TestPetUploadsFallsBackToPosition(t *testing.T) {
	form := multipartForm(t, map[string][]string{
		"pet_photo[]": {"a.png", "b.png", "c.png"},
	})
	uploads := petUploads(form, 2)
	require.Len(t, uploads, 2)
	assert.Equal(t, "a.png", uploads[0].Filename)
	assert.Equal(t, "b.png", uploads[1].Filename)
}

func TestPetUploadsWithoutForm(t *testing.T) {
	uploads := petUploads(nil, 2)
	assert.Equal(t, []upload.File{upload.None, upload.None}, uploads)
}

func TestPetRowsCountsPhotoOnlyRows(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("pet_name[]", "Rex"))
	require.NoError(t, w.WriteField("pet_breed[]", "Lab"))
	require.NoError(t, w.WriteField("pet_age[]", "3"))
	for _, field := range []string{"pet_photo[0]", "pet_photo[1]"} {
		part, err := w.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = part.Write([]byte("data"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", &body)
	c.Request.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, c.Request.ParseMultipartForm(1<<20))

	rows := petRows(c)
	require.Len(t, rows, 2)
	assert.Equal(t, "Rex", rows[0].Name)
	assert.Empty(t, rows[1].Name)
	assert.Equal(t, "pet_photo[1].png", rows[1].Upload.Filename)
	assert.Equal(t, upload.StatusReceived, rows[1].Upload.Status)
}

func TestPhotoRows(t *testing.T) {
	assert.Equal(t, 0, photoRows(nil))
	assert.Equal(t, 4, photoRows(multipartForm(t, map[string][]string{"pet_photo[3]": {"d.png"}})))
	assert.Equal(t, 2, photoRows(multipartForm(t, map[string][]string{"pet_photo[]": {"a.png", "b.png"}})))
	assert.Equal(t, 0, photoRows(multipartForm(t, map[string][]string{"pet_photo[100000000]": {"x.png"}})))
	assert.Equal(t, 0, photoRows(multipartForm(t, map[string][]string{"profile_photo": {"p.png"}})))
}
