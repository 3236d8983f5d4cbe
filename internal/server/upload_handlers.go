package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/completecity/petryk/internal/ai"
	"github.com/completecity/petryk/internal/database"
	"github.com/completecity/petryk/internal/model"
	"github.com/completecity/petryk/internal/pkerror"
	"github.com/completecity/petryk/internal/storage"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// upload contains all upload handlers.
// The server never proxies file bytes, clients write directly to the object
// storage with a presigned URL and then register the metadata.
type upload struct {
	db        database.Client
	store     *storage.S3
	describer *ai.Describer
	expiry    time.Duration
}

type presignParams struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type completeParams struct {
	FileID      string `json:"file_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
}

///// Presign
////
//

// Presign issues a time-limited URL scoped to a server-generated key so the
// client can upload directly to the object storage.
func (h *upload) Presign(c echo.Context) error {
	var params presignParams
	if err := c.Bind(&params); err != nil {
		return pkerror.NewWithCode(http.StatusBadRequest, "Could not parse presign params.")
	}

	if params.Filename == "" {
		return pkerror.NewWithCode(http.StatusBadRequest, "filename is required")
	}
	if params.ContentType == "" {
		params.ContentType = "application/octet-stream"
	}

	fileID := uuid.Must(uuid.NewV4()).String()
	key := "uploads/" + fileID + "/" + params.Filename

	url, err := h.store.PresignPut(c.Request().Context(), key, params.ContentType, h.expiry)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"upload_url": url,
		"file_id":    fileID,
		"key":        key,
	})
}

///// Complete
////
//

// Complete registers the metadata of an upload performed by the client.
// The reported size and content type are trusted as is, there is no
// verification against the stored object.
func (h *upload) Complete(c echo.Context) error {
	var params completeParams
	if err := c.Bind(&params); err != nil {
		return pkerror.NewWithCode(http.StatusBadRequest, "Could not parse complete params.")
	}

	if params.FileID == "" || params.Key == "" {
		return pkerror.NewWithCode(http.StatusBadRequest, "file_id and key are required")
	}

	record := &model.Item{
		Base:        model.Base{ID: params.FileID},
		Type:        model.TypeFile,
		Filename:    params.Filename,
		ContentType: params.ContentType,
		Size:        params.Size,
		Key:         params.Key,
		URL:         h.store.PublicURL(params.Key),
		UploadedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	if strings.HasPrefix(params.ContentType, "image/") {
		record.ImageDescription = h.describe(c, params.Key, params.ContentType)
	}

	if err := h.db.Save(record); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, record)
}

// describe fetches the uploaded image and asks the vision model for a short
// description. Any failure degrades to an empty string.
func (h *upload) describe(c echo.Context, key, contentType string) string {
	img, err := h.store.Download(c.Request().Context(), key)
	if err != nil {
		logrus.WithError(err).Warn("could not fetch uploaded image")
		return ""
	}

	description, err := h.describer.Describe(c.Request().Context(), img, contentType)
	if err != nil {
		logrus.WithError(err).Warn("could not describe uploaded image")
		return ""
	}
	return description
}

///// List
////
//

// List renders all the registered file records.
func (h *upload) List(c echo.Context) error {
	records, err := h.db.FindItemsByType(model.TypeFile)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, records)
}
