package server_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/appleboy/gofight/v2"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestUploadPresign(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	params := gofight.D{
		"filename":     "cat.png",
		"content_type": "image/png",
	}

	r.POST("/upload/presign").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var response map[string]string
		assert.NoError(t, json.Unmarshal(r.Body.Bytes(), &response))

		fileID := response["file_id"]
		_, err := uuid.FromString(fileID)
		assert.NoError(t, err)

		assert.Equal(t, "uploads/"+fileID+"/cat.png", response["key"])
		assert.Contains(t, response["upload_url"], "uploads/"+fileID+"/cat.png")
	})
}

func TestRequestUploadPresignMissingFilename(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	params := gofight.D{
		"content_type": "image/png",
	}

	r.POST("/upload/presign").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"message":"filename is required"}}`, r.Body.String())
	})
}

func TestRequestUploadComplete(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	fileID := uuid.Must(uuid.NewV4()).String()
	key := "uploads/" + fileID + "/notes.txt"
	params := gofight.D{
		"file_id":      fileID,
		"filename":     "notes.txt",
		"content_type": "text/plain",
		"key":          key,
		"size":         42,
	}

	r.POST("/upload/complete").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var record map[string]any
		assert.NoError(t, json.Unmarshal(r.Body.Bytes(), &record))
		assert.Equal(t, fileID, record["id"])
		assert.Equal(t, "file", record["type"])
		assert.Equal(t, "notes.txt", record["filename"])
		assert.Equal(t, "text/plain", record["content_type"])
		assert.Equal(t, float64(42), record["size"])
		assert.Equal(t, key, record["s3_key"])
		assert.True(t, strings.HasSuffix(record["url"].(string), "/petryk-test/"+key))

		_, err := time.Parse(time.RFC3339, record["uploaded_at"].(string))
		assert.NoError(t, err)
	})

	r.GET("/files").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var records []map[string]any
		assert.NoError(t, json.Unmarshal(r.Body.Bytes(), &records))
		assert.Len(t, records, 1)
		assert.Equal(t, fileID, records[0]["id"])
	})
}

func TestRequestUploadCompleteMissingParams(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	for _, params := range []gofight.D{
		{"filename": "notes.txt", "key": "uploads/x/notes.txt"},
		{"filename": "notes.txt", "file_id": "x"},
	} {
		r.POST("/upload/complete").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusBadRequest, r.Code)
			assert.JSONEq(t, `{"error":{"message":"file_id and key are required"}}`, r.Body.String())
		})
	}

	// Nothing has been written.
	r.GET("/files").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `[]`, r.Body.String())
	})
}

// An unreachable object storage or vision model must not fail the completion,
// the record is simply registered without a description.
func TestRequestUploadCompleteImageDegraded(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	fileID := uuid.Must(uuid.NewV4()).String()
	params := gofight.D{
		"file_id":      fileID,
		"filename":     "cat.png",
		"content_type": "image/png",
		"key":          "uploads/" + fileID + "/cat.png",
		"size":         1024,
	}

	r.POST("/upload/complete").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var record map[string]any
		assert.NoError(t, json.Unmarshal(r.Body.Bytes(), &record))
		assert.Equal(t, "file", record["type"])
		assert.NotContains(t, record, "image_description")
	})
}
