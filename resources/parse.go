package resources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strconv"

	"github.com/ruteri/sites-portal-backend/cryptoutils"
	"github.com/ruteri/sites-portal-backend/interfaces"
)

// moveValue accepts numbers serialized either as JSON strings or bare numbers.
type moveValue string

func (v *moveValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = moveValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = moveValue(n.String())
	return nil
}

type uid struct {
	ID string `json:"id"`
}

type siteFields struct {
	ID *uid `json:"id"`
}

type moveStruct[T any] struct {
	Type   string `json:"type"`
	Fields T      `json:"fields"`
}

type headerEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type vecMap struct {
	Contents []moveStruct[headerEntry] `json:"contents"`
}

type rangeFields struct {
	Start moveValue `json:"start"`
	End   moveValue `json:"end"`
}

type resourceFields struct {
	Path     string                   `json:"path"`
	BlobID   moveValue                `json:"blob_id"`
	BlobHash moveValue                `json:"blob_hash"`
	Headers  *moveStruct[vecMap]      `json:"headers"`
	Range    *moveStruct[rangeFields] `json:"range"`
}

// dynamicField is the content of a dynamic_field::Field<ResourcePath, Resource>.
type dynamicField struct {
	Value *moveStruct[resourceFields] `json:"value"`
}

// fieldName is the name of a resource dynamic field, {"type":..,"value":{"path":..}}.
type fieldName struct {
	Value json.RawMessage `json:"value"`
}

// resourceTableID returns the UID the site's resources hang off.
func resourceTableID(site *interfaces.ObjectRecord) (interfaces.ObjectID, error) {
	var fields siteFields
	if len(site.Fields) == 0 || json.Unmarshal(site.Fields, &fields) != nil || fields.ID == nil || fields.ID.ID == "" {
		return interfaces.ObjectID{}, fmt.Errorf("%w: object %s has no resource table", interfaces.ErrMalformedObject, site.ObjectID)
	}

	tableID, err := interfaces.NewObjectIDFromHex(fields.ID.ID)
	if err != nil {
		return interfaces.ObjectID{}, fmt.Errorf("%w: object %s has an invalid resource table id: %w", interfaces.ErrMalformedObject, site.ObjectID, err)
	}
	return tableID, nil
}

// entryName derives a best-effort file name for a dynamic field entry.
func entryName(entry interfaces.DynamicFieldEntry) string {
	var name fieldName
	if err := json.Unmarshal(entry.Name, &name); err == nil && len(name.Value) > 0 {
		var p struct {
			Path string `json:"path"`
		}
		if json.Unmarshal(name.Value, &p) == nil && p.Path != "" {
			return path.Base(p.Path)
		}
		var s string
		if json.Unmarshal(name.Value, &s) == nil && s != "" {
			return path.Base(s)
		}
	}
	return entry.ObjectID.Hex()
}

func parseU64(v moveValue) (*uint64, error) {
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(string(v), 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// parseResource extracts a resource from its record. Returns nil without an
// error when the record lacks a path or a blob id.
func parseResource(record *interfaces.ObjectRecord, log *slog.Logger) (*interfaces.ResourcePath, error) {
	var field dynamicField
	if err := json.Unmarshal(record.Fields, &field); err != nil {
		return nil, fmt.Errorf("%w: resource %s: %w", interfaces.ErrMalformedObject, record.ObjectID, err)
	}
	if field.Value == nil {
		return nil, nil
	}

	fields := field.Value.Fields
	if fields.Path == "" || fields.BlobID == "" {
		return nil, nil
	}

	blobID, err := cryptoutils.NormalizeBlobID(string(fields.BlobID))
	if err != nil {
		log.Warn("Using raw blob id", slog.String("path", fields.Path), slog.String("blobId", blobID), "err", err)
	}

	resource := &interfaces.ResourcePath{
		Path:     fields.Path,
		ObjectID: record.ObjectID,
		BlobID:   blobID,
		Version:  record.Version,
	}

	if fields.BlobHash != "" {
		resource.BlobHash, err = cryptoutils.U256LittleEndian(string(fields.BlobHash))
		if err != nil {
			return nil, fmt.Errorf("%w: resource %s blob hash: %w", interfaces.ErrMalformedObject, record.ObjectID, err)
		}
	}

	if fields.Headers != nil {
		for _, entry := range fields.Headers.Fields.Contents {
			resource.Headers = append(resource.Headers, interfaces.Header{Key: entry.Fields.Key, Value: entry.Fields.Value})
		}
	}

	if fields.Range != nil {
		start, err := parseU64(fields.Range.Fields.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: resource %s range start: %w", interfaces.ErrMalformedObject, record.ObjectID, err)
		}
		end, err := parseU64(fields.Range.Fields.End)
		if err != nil {
			return nil, fmt.Errorf("%w: resource %s range end: %w", interfaces.ErrMalformedObject, record.ObjectID, err)
		}
		if start != nil || end != nil {
			resource.Range = &interfaces.Range{Start: start, End: end}
		}
	}

	return resource, nil
}
