package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dealtracker/internal/models"
	"dealtracker/internal/services"
	"dealtracker/internal/tenancy"
)

const pdfBytes = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n"

func multipartBody(t *testing.T, fields map[string]string, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func materialServer(materials services.MaterialService, scope tenancy.Scope, limit int64) *echo.Echo {
	h := NewMaterialHandlers(materials, limit)
	e := newTestServer(adminProfile(), scope)
	e.POST("/materials", h.CreateMaterial)
	e.GET("/material-versions/:versionId/download", h.DownloadVersion)
	e.GET("/material-versions/:versionId/link", h.VersionLink)
	return e
}

func TestCreateMaterialSniffsContentType(t *testing.T) {
	scope := adminScope(adminProfile(), uuid.New())
	materials := new(MockMaterialService)
	created := &models.Material{ID: uuid.New(), Name: "Deck", Type: models.MaterialPitchDeck}
	materials.On("Create", mock.Anything, scope,
		mock.MatchedBy(func(in *services.MaterialInput) bool {
			return in.Name == "Deck" && in.Type == models.MaterialPitchDeck && in.Notes != nil && *in.Notes == "Q3"
		}),
		mock.MatchedBy(func(f *services.FileUpload) bool {
			return f.FileName == "deck.pdf" &&
				f.ContentType == "application/pdf" &&
				f.Size == int64(len(pdfBytes))
		}),
	).Return(created, nil)

	body, contentType := multipartBody(t, map[string]string{"name": "Deck", "type": "pitch_deck", "notes": "Q3"}, "deck.pdf", pdfBytes)
	rec := doRequest(materialServer(materials, scope, 1<<20), http.MethodPost, "/materials", body, contentType)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID.String())
	materials.AssertExpectations(t)
}

func TestCreateMaterialRequiresFile(t *testing.T) {
	materials := new(MockMaterialService)
	body, contentType := multipartBody(t, map[string]string{"name": "Deck"}, "", "")

	rec := doRequest(materialServer(materials, tenancy.Scope{}, 1<<20), http.MethodPost, "/materials", body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "A file is required")
	materials.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateMaterialRejectsOversizeFile(t *testing.T) {
	materials := new(MockMaterialService)
	body, contentType := multipartBody(t, map[string]string{"name": "Deck"}, "big.pdf", strings.Repeat("x", 64))

	rec := doRequest(materialServer(materials, tenancy.Scope{}, 16), http.MethodPost, "/materials", body, contentType)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	materials.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDownloadVersionStreamsAttachment(t *testing.T) {
	scope := adminScope(adminProfile(), uuid.New())
	versionID := uuid.New()
	materials := new(MockMaterialService)
	materials.On("Download", mock.Anything, scope, versionID).Return(&services.MaterialDownload{
		Body:        io.NopCloser(strings.NewReader(pdfBytes)),
		FileName:    "deck v2.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(pdfBytes)),
	}, nil)

	rec := doRequest(materialServer(materials, scope, 0), http.MethodGet, "/material-versions/"+versionID.String()+"/download", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="deck v2.pdf"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, pdfBytes, rec.Body.String())
}

func TestVersionLinkReturnsPresignedURL(t *testing.T) {
	scope := adminScope(adminProfile(), uuid.New())
	versionID := uuid.New()
	materials := new(MockMaterialService)
	materials.On("DownloadURL", mock.Anything, scope, versionID, downloadLinkTTL).
		Return("https://storage.local/materials/x?X-Amz-Signature=abc", nil)

	rec := doRequest(materialServer(materials, scope, 0), http.MethodGet, "/material-versions/"+versionID.String()+"/link", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://storage.local/materials/x?X-Amz-Signature=abc","expires_in":900}`, rec.Body.String())
}

func TestReadinessReportsUnhealthyDependency(t *testing.T) {
	h := NewHealthHandlers(stubPinger{}, stubPinger{err: errors.New("connection refused")}, stubPinger{}, "test")
	e := echo.New()
	e.GET("/ready", h.ReadinessCheck)
	e.GET("/health", h.LivenessCheck)

	rec := doRequest(e, http.MethodGet, "/ready", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"unhealthy"`)
	assert.Contains(t, rec.Body.String(), `"database":"healthy"`)

	rec = doRequest(e, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alive"`)
}
