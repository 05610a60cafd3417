package firestore

import "encoding/json"

// wireValue is a typed value holding exactly one key such as "stringValue".
type wireValue map[string]json.RawMessage

// wireDocument is the document resource as sent and received over the wire.
type wireDocument struct {
	Name       string               `json:"name,omitempty"`
	Fields     map[string]wireValue `json:"fields,omitempty"`
	CreateTime string               `json:"createTime,omitempty"`
	UpdateTime string               `json:"updateTime,omitempty"`
}

// wireArray is the payload of arrayValue.
type wireArray struct {
	Values []wireValue `json:"values,omitempty"`
}

// wireMap is the payload of mapValue.
type wireMap struct {
	Fields map[string]wireValue `json:"fields,omitempty"`
}

// wireGeoPoint is the payload of geoPointValue.
type wireGeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// errorResponse is the error envelope of the document store.
type errorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
