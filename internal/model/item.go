package model

import (
	"encoding/json"
	"regexp"

	"github.com/pkg/errors"
)

// TypeFile is the reserved item type marking an uploaded file record.
const TypeFile = "file"

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail returns true if the given string looks like an email address.
func ValidEmail(email string) bool {
	return emailRegexp.MatchString(email)
}

// An Item represents a database record and the rendered API response.
// A handful of keys are reserved and typed, everything else the client sends
// lands verbatim in the Extra bag and is flattened back on rendering.
type Item struct {
	Base `msgpack:",inline" storm:"inline"`

	Type    string `msgpack:"type" storm:"index"`
	Email   string `msgpack:"email"`
	Opinion string `msgpack:"petryk_opinion"`

	// File record fields, populated when Type is TypeFile.
	Filename         string `msgpack:"filename"`
	ContentType      string `msgpack:"content_type"`
	Size             int64  `msgpack:"size"`
	Key              string `msgpack:"s3_key"`
	URL              string `msgpack:"url"`
	UploadedAt       string `msgpack:"uploaded_at"`
	ImageDescription string `msgpack:"image_description"`

	// Extra holds all non-reserved fields of the submitted record.
	Extra map[string]any `msgpack:"extra"`
}

// MarshalJSON flattens the item into a single JSON object.
func (i *Item) MarshalJSON() ([]byte, error) {
	record := make(map[string]any, len(i.Extra)+4)
	for k, v := range i.Extra {
		record[k] = v
	}

	record["id"] = i.ID
	setifs(record, "type", i.Type)
	setifs(record, "email", i.Email)
	setifs(record, "petryk_opinion", i.Opinion)
	setifs(record, "filename", i.Filename)
	setifs(record, "content_type", i.ContentType)
	setifs(record, "s3_key", i.Key)
	setifs(record, "url", i.URL)
	setifs(record, "uploaded_at", i.UploadedAt)
	setifs(record, "image_description", i.ImageDescription)
	if _, ok := record["size"]; !ok && i.Type == TypeFile {
		record["size"] = i.Size
	}

	payload, err := json.Marshal(record)
	return payload, errors.Wrap(err, "could not render item")
}

// UnmarshalJSON extracts the reserved keys and keeps the remainder in Extra.
func (i *Item) UnmarshalJSON(data []byte) error {
	record := map[string]any{}
	if err := json.Unmarshal(data, &record); err != nil {
		return errors.Wrap(err, "could not parse item")
	}

	i.ID = pops(record, "id")
	i.Type = pops(record, "type")
	i.Email = pops(record, "email")
	i.Opinion = pops(record, "petryk_opinion")
	i.Filename = pops(record, "filename")
	i.ContentType = pops(record, "content_type")
	if i.Type == TypeFile {
		i.Size = popn(record, "size")
	}
	i.Key = pops(record, "s3_key")
	i.URL = pops(record, "url")
	i.UploadedAt = pops(record, "uploaded_at")
	i.ImageDescription = pops(record, "image_description")
	delete(record, "created_at")
	delete(record, "updated_at")

	i.Extra = record
	return nil
}

// Payload returns the fields Petryk reacts to, i.e. everything except the
// identifier, the submitter address and any previous reaction.
func (i *Item) Payload() map[string]any {
	payload := make(map[string]any, len(i.Extra)+1)
	for k, v := range i.Extra {
		payload[k] = v
	}

	setifs(payload, "type", i.Type)
	setifs(payload, "filename", i.Filename)
	setifs(payload, "content_type", i.ContentType)
	setifs(payload, "s3_key", i.Key)
	setifs(payload, "url", i.URL)
	setifs(payload, "uploaded_at", i.UploadedAt)
	setifs(payload, "image_description", i.ImageDescription)
	if i.Size != 0 {
		payload["size"] = i.Size
	}
	return payload
}

func setifs(m map[string]any, k, v string) {
	if v != "" {
		m[k] = v
	}
}

// pops extracts the string stored under a reserved key. A value of another
// type is client data, it stays in the open bag and round-trips verbatim.
func pops(m map[string]any, k string) string {
	s, ok := m[k].(string)
	if !ok {
		return ""
	}
	delete(m, k)
	return s
}

func popn(m map[string]any, k string) int64 {
	switch n := m[k].(type) {
	case float64:
		delete(m, k)
		return int64(n)
	case int64:
		delete(m, k)
		return n
	}
	return 0
}
