package handlers

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"dealtracker/internal/models"
	"dealtracker/internal/services"
)

const downloadLinkTTL = 15 * time.Minute

// MaterialHandlers handles material uploads, versions and downloads.
type MaterialHandlers struct {
	materials      services.MaterialService
	maxUploadBytes int64
}

func NewMaterialHandlers(materials services.MaterialService, maxUploadBytes int64) *MaterialHandlers {
	return &MaterialHandlers{materials: materials, maxUploadBytes: maxUploadBytes}
}

func (h *MaterialHandlers) ListMaterials(c echo.Context) error {
	materials, err := h.materials.List(c.Request().Context(), scopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, materials)
}

func (h *MaterialHandlers) GetMaterial(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	material, err := h.materials.Get(c.Request().Context(), scopeOf(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, material)
}

// CreateMaterial takes a multipart form with name, type, notes and file.
func (h *MaterialHandlers) CreateMaterial(c echo.Context) error {
	upload, closeFile, err := h.formFile(c)
	if err != nil {
		return err
	}
	defer closeFile()

	in := &services.MaterialInput{
		Name: c.FormValue("name"),
		Type: models.MaterialType(c.FormValue("type")),
	}
	if notes := c.FormValue("notes"); notes != "" {
		in.Notes = &notes
	}

	material, err := h.materials.Create(c.Request().Context(), scopeOf(c), in, upload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, material)
}

func (h *MaterialHandlers) UploadVersion(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	upload, closeFile, err := h.formFile(c)
	if err != nil {
		return err
	}
	defer closeFile()

	version, err := h.materials.UploadVersion(c.Request().Context(), scopeOf(c), id, upload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, version)
}

// DownloadVersion streams a stored version as an attachment.
func (h *MaterialHandlers) DownloadVersion(c echo.Context) error {
	versionID, err := pathID(c, "versionId")
	if err != nil {
		return err
	}
	download, err := h.materials.Download(c.Request().Context(), scopeOf(c), versionID)
	if err != nil {
		return err
	}
	defer download.Body.Close()

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": download.FileName}))
	if download.Size > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(download.Size, 10))
	}
	return c.Stream(http.StatusOK, download.ContentType, download.Body)
}

// VersionLink returns a short-lived direct download link.
func (h *MaterialHandlers) VersionLink(c echo.Context) error {
	versionID, err := pathID(c, "versionId")
	if err != nil {
		return err
	}
	url, err := h.materials.DownloadURL(c.Request().Context(), scopeOf(c), versionID, downloadLinkTTL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"url":        url,
		"expires_in": int(downloadLinkTTL.Seconds()),
	})
}

func (h *MaterialHandlers) DeleteMaterial(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.materials.Delete(c.Request().Context(), scopeOf(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// formFile opens the "file" part and sniffs its content type from the bytes,
// not from the client-supplied header.
func (h *MaterialHandlers) formFile(c echo.Context) (*services.FileUpload, func(), error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "A file is required")
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		return nil, nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the %d byte upload limit", h.maxUploadBytes))
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open upload: %w", err)
	}
	closeFile := func() {
		if err := file.Close(); err != nil {
			zerolog.Ctx(c.Request().Context()).Warn().Err(err).Msg("failed to close upload")
		}
	}

	contentType, err := sniffContentType(file)
	if err != nil {
		closeFile()
		return nil, nil, err
	}

	return &services.FileUpload{
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Reader:      file,
	}, closeFile, nil
}

func sniffContentType(file multipart.File) (string, error) {
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to detect content type: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}
	return mtype.String(), nil
}
