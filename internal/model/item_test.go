package model_test

import (
	"encoding/json"
	"testing"

	"github.com/completecity/petryk/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestItemUnmarshalJSON(t *testing.T) {
	payload := `{
		"id": "d989ccc9-15c6-475e-839b-1690bd07d073",
		"email": "a@b.com",
		"petryk_opinion": "Interesting!",
		"note": "hello",
		"count": 3,
		"nested": {"deep": true}
	}`

	var item model.Item
	assert.NoError(t, json.Unmarshal([]byte(payload), &item))

	assert.Equal(t, "d989ccc9-15c6-475e-839b-1690bd07d073", item.ID)
	assert.Equal(t, "a@b.com", item.Email)
	assert.Equal(t, "Interesting!", item.Opinion)
	assert.Equal(t, map[string]any{
		"note":   "hello",
		"count":  float64(3),
		"nested": map[string]any{"deep": true},
	}, item.Extra)
}

func TestItemMarshalJSON(t *testing.T) {
	item := &model.Item{
		Base:    model.Base{ID: "d989ccc9-15c6-475e-839b-1690bd07d073"},
		Email:   "a@b.com",
		Opinion: "Interesting!",
		Extra:   map[string]any{"note": "hello", "count": float64(3)},
	}

	payload, err := json.Marshal(item)
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "d989ccc9-15c6-475e-839b-1690bd07d073",
		"email": "a@b.com",
		"petryk_opinion": "Interesting!",
		"note": "hello",
		"count": 3
	}`, string(payload))
}

func TestItemMarshalJSONFileRecord(t *testing.T) {
	item := &model.Item{
		Base:        model.Base{ID: "d989ccc9-15c6-475e-839b-1690bd07d073"},
		Type:        model.TypeFile,
		Filename:    "cat.png",
		ContentType: "image/png",
		Key:         "uploads/d989ccc9-15c6-475e-839b-1690bd07d073/cat.png",
		URL:         "http://localhost:9000/petryk-uploads/uploads/d989ccc9-15c6-475e-839b-1690bd07d073/cat.png",
		UploadedAt:  "2026-08-31T12:00:00Z",
	}

	payload, err := json.Marshal(item)
	assert.NoError(t, err)

	var record map[string]any
	assert.NoError(t, json.Unmarshal(payload, &record))
	assert.Equal(t, "file", record["type"])
	// size is always rendered for file records, even when the client reported none.
	assert.Equal(t, float64(0), record["size"])
	assert.NotContains(t, record, "image_description")
}

// Reserved keys carrying values of an unexpected type are plain client data
// and must be stored and rendered verbatim, like any other field.
func TestItemReservedKeyRoundTrip(t *testing.T) {
	payload := `{
		"id": "d989ccc9-15c6-475e-839b-1690bd07d073",
		"email": "a@b.com",
		"note": "hello",
		"size": 5,
		"type": 123
	}`

	var item model.Item
	assert.NoError(t, json.Unmarshal([]byte(payload), &item))

	assert.Empty(t, item.Type)
	assert.Zero(t, item.Size)
	assert.Equal(t, map[string]any{
		"note": "hello",
		"size": float64(5),
		"type": float64(123),
	}, item.Extra)

	rendered, err := json.Marshal(&item)
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "d989ccc9-15c6-475e-839b-1690bd07d073",
		"email": "a@b.com",
		"note": "hello",
		"size": 5,
		"type": 123
	}`, string(rendered))
}

func TestItemPayload(t *testing.T) {
	item := &model.Item{
		Base:    model.Base{ID: "d989ccc9-15c6-475e-839b-1690bd07d073"},
		Email:   "a@b.com",
		Opinion: "old take",
		Extra:   map[string]any{"note": "hello"},
	}

	payload := item.Payload()
	assert.Equal(t, map[string]any{"note": "hello"}, payload)
}

func TestItemPayloadFileRecord(t *testing.T) {
	item := &model.Item{
		Base:        model.Base{ID: "d989ccc9-15c6-475e-839b-1690bd07d073"},
		Type:        model.TypeFile,
		Filename:    "cat.png",
		ContentType: "image/png",
		Size:        42,
		Key:         "uploads/d989ccc9-15c6-475e-839b-1690bd07d073/cat.png",
		URL:         "http://localhost:9000/petryk-uploads/uploads/d989ccc9-15c6-475e-839b-1690bd07d073/cat.png",
		UploadedAt:  "2026-08-31T12:00:00Z",
	}

	payload := item.Payload()
	assert.Equal(t, "uploads/d989ccc9-15c6-475e-839b-1690bd07d073/cat.png", payload["s3_key"])
	assert.Equal(t, int64(42), payload["size"])
	assert.Equal(t, "file", payload["type"])
}

func TestValidEmail(t *testing.T) {
	assert.True(t, model.ValidEmail("a@b.com"))
	assert.True(t, model.ValidEmail("george.abitbol+petryk@nowhere.lan"))
	assert.False(t, model.ValidEmail(""))
	assert.False(t, model.ValidEmail("not-an-email"))
	assert.False(t, model.ValidEmail("missing@tld"))
	assert.False(t, model.ValidEmail("@nowhere.lan"))
}
