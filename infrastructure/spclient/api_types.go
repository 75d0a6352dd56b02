package spclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"doclib/domain/library"
	"doclib/domain/paging"
)

// ---------- Wire models ----------

// ODataResults is the verbose collection shape: {"results": [...]}.
type ODataResults[T any] struct {
	Results []T `json:"results"`
}

// collectionEnvelope covers nometadata ({"value": [...]}) and verbose ({"d": {"results": [...]}}) responses.
type collectionEnvelope[T any] struct {
	Value []T              `json:"value"`
	D     *ODataResults[T] `json:"d"`
}

// FieldApiData is one entry of the list fields collection.
type FieldApiData struct {
	InternalName  string `json:"InternalName"`
	Title         string `json:"Title"`
	TypeAsString  string `json:"TypeAsString"`
	Hidden        bool   `json:"Hidden"`
	ReadOnlyField bool   `json:"ReadOnlyField"`
}

// ViewFieldsApiData is the ViewFields resource of a list view.
type ViewFieldsApiData struct {
	Items     []string `json:"Items"`
	SchemaXml string   `json:"SchemaXml,omitempty"`
	D         *struct {
		Items ODataResults[string] `json:"Items"`
	} `json:"d,omitempty"`
}

// RenderListDataApiData is the RenderListDataAsStream payload for RenderOptions=2 (list data only).
type RenderListDataApiData struct {
	Row      []library.RawRecord `json:"Row"`
	FirstRow int                 `json:"FirstRow"`
	LastRow  int                 `json:"LastRow"`
	NextHref string              `json:"NextHref"`
	PrevHref string              `json:"PrevHref"`
	RowLimit int                 `json:"RowLimit"`
}

// renderListDataRequest is the POST body of RenderListDataAsStream.
type renderListDataRequest struct {
	Parameters renderListDataParameters `json:"parameters"`
}

type renderListDataParameters struct {
	ViewXml       string `json:"ViewXml"`
	RenderOptions int    `json:"RenderOptions"`
}

// renderOptionListData asks the server for row data without view chrome.
const renderOptionListData = 2

// ---------- Decoders ----------

// DecodeCollection reads a collection response in any of the OData envelopes, or a bare array.
func DecodeCollection[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("decode collection array: %w", err)
		}
		return out, nil
	}

	var env collectionEnvelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode collection envelope: %w", err)
	}
	if env.D != nil {
		return env.D.Results, nil
	}
	if env.Value == nil {
		return []T{}, nil
	}
	return env.Value, nil
}

// DecodeRenderListData reads a RenderListDataAsStream response, also accepting a {"d": {...}} wrapper.
func DecodeRenderListData(data []byte) (paging.StreamResponse, error) {
	var wrapped struct {
		D *RenderListDataApiData `json:"d"`
		RenderListDataApiData
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return paging.StreamResponse{}, fmt.Errorf("decode render list data: %w", err)
	}

	payload := wrapped.RenderListDataApiData
	if wrapped.D != nil {
		payload = *wrapped.D
	}
	records := payload.Row
	if records == nil {
		records = []library.RawRecord{}
	}
	return paging.StreamResponse{Records: records, NextCursor: payload.NextHref}, nil
}

// DecodeViewFields reads the ordered internal names of a view's columns.
func DecodeViewFields(data []byte) ([]string, error) {
	var vf ViewFieldsApiData
	if err := json.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("decode view fields: %w", err)
	}
	if vf.D != nil {
		return vf.D.Items.Results, nil
	}
	return vf.Items, nil
}
