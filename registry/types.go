package registry

import "encoding/json"

// ObjectDataOptions selects the parts of an object returned by the node.
type ObjectDataOptions struct {
	ShowType    bool `json:"showType"`
	ShowContent bool `json:"showContent"`
	ShowOwner   bool `json:"showOwner,omitempty"`
}

var defaultObjectOptions = ObjectDataOptions{ShowType: true, ShowContent: true}

// ObjectResponse is the result of sui_getObject and the element type of
// sui_multiGetObjects.
type ObjectResponse struct {
	Data  *ObjectData  `json:"data,omitempty"`
	Error *ObjectError `json:"error,omitempty"`
}

type ObjectData struct {
	ObjectID string         `json:"objectId"`
	Version  string         `json:"version"`
	Digest   string         `json:"digest,omitempty"`
	Type     string         `json:"type,omitempty"`
	Content  *ObjectContent `json:"content,omitempty"`
}

type ObjectContent struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type,omitempty"`
	Fields   json.RawMessage `json:"fields,omitempty"`
}

// ObjectError is reported per object, e.g. {"code":"notExists","object_id":"0x.."}.
type ObjectError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// DynamicFieldsPage is the result of suix_getDynamicFields.
type DynamicFieldsPage struct {
	Data        []DynamicFieldInfo `json:"data"`
	NextCursor  *string            `json:"nextCursor"`
	HasNextPage bool               `json:"hasNextPage"`
}

type DynamicFieldInfo struct {
	Name       json.RawMessage `json:"name"`
	ObjectType string          `json:"objectType"`
	ObjectID   string          `json:"objectId"`
}

const objectNotExists = "notExists"
