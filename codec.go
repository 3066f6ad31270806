package kvbind

import "encoding/json"

// Codec serializes stored forms to and from the byte payloads kept in the
// store. Bindings use JSON unless WithCodec overrides it.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON is the default codec. It uses encoding/json, so bound types follow
// the usual struct tag conventions.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
