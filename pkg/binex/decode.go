package binex

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/bytedance/sonic"

	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

// DefaultDataKey is where enveloped responses carry their payload.
const DefaultDataKey = "data"

// Shape classifies a raw response body.
type Shape string

const (
	ShapeEnvelope  Shape = "envelope"
	ShapeBareArray Shape = "bare-array"
	ShapeObject    Shape = "object"
	ShapeRejected  Shape = "rejected"
	ShapeMalformed Shape = "malformed"
)

type statusFields struct {
	Status  *Text           `json:"status"`
	Success *Text           `json:"success"`
	Message Text            `json:"message"`
	Msg     Text            `json:"msg"`
	Error   Text            `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// Classify reports the shape of a response without decoding the payload.
func Classify(raw []byte) Shape {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ShapeMalformed
	}
	switch trimmed[0] {
	case '[':
		var probe []json.RawMessage
		if err := sonic.Unmarshal(trimmed, &probe); err != nil {
			return ShapeMalformed
		}
		return ShapeBareArray
	case '{':
		obj, err := object(trimmed)
		if err != nil {
			return ShapeMalformed
		}
		if !enveloped(obj, nil) {
			return ShapeObject
		}
		if err := CheckStatus(trimmed); err != nil {
			return ShapeRejected
		}
		if _, ok := obj[DefaultDataKey]; ok {
			return ShapeEnvelope
		}
		return ShapeObject
	default:
		return ShapeMalformed
	}
}

// CheckStatus inspects the status flag of an object response. A missing flag counts as success.
// A status that is neither a result word nor sits beside data or a message belongs to a bare
// record (a PAID receipt) and is ignored. Anything else than success/ok/true/1 becomes a business
// rejection carrying the server message.
func CheckStatus(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return appErrors.Clone(appErrors.ErrMalformedResponse, "empty response")
	}
	if trimmed[0] != '{' {
		return nil
	}
	var fields statusFields
	if err := sonic.Unmarshal(trimmed, &fields); err != nil {
		return appErrors.Wrap(err, appErrors.ErrMalformedResponse.Code, appErrors.ErrMalformedResponse.Status, "unreadable status flag")
	}
	flag := fields.Status
	if flag == nil {
		flag = fields.Success
	}
	if flag == nil || successful(string(*flag)) {
		return nil
	}
	msg := firstNonEmpty(string(fields.Message), string(fields.Msg), string(fields.Error))
	if !failed(string(*flag)) && msg == "" && len(fields.Data) == 0 {
		return nil
	}
	return appErrors.Clone(appErrors.ErrBackendRejected, msg)
}

// DecodeList decodes a list from a bare array, an envelope keyed by one of keys (default "data"),
// or a PHP associative array keyed by id. A null payload decodes to an empty list.
func DecodeList[T any](raw []byte, keys ...string) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, appErrors.Clone(appErrors.ErrMalformedResponse, "empty response")
	}
	if trimmed[0] == '[' {
		return decodeArray[T](trimmed)
	}
	if trimmed[0] != '{' {
		return nil, appErrors.Clone(appErrors.ErrMalformedResponse, "expected a list")
	}
	if err := CheckStatus(trimmed); err != nil {
		return nil, err
	}
	obj, err := object(trimmed)
	if err != nil {
		return nil, err
	}
	payload, ok := pick(obj, keys)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrMalformedResponse, "response has no list payload")
	}
	payload = bytes.TrimSpace(payload)
	switch {
	case len(payload) == 0 || bytes.Equal(payload, []byte("null")):
		return []T{}, nil
	case payload[0] == '[':
		return decodeArray[T](payload)
	case payload[0] == '{':
		return decodeKeyed[T](payload)
	default:
		return nil, appErrors.Clone(appErrors.ErrMalformedResponse, "list payload is a "+kindOf(payload))
	}
}

// DecodeObject decodes a single record from an envelope, a bare object or a one-element array.
func DecodeObject[T any](raw []byte, keys ...string) (T, error) {
	var zero T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return zero, appErrors.Clone(appErrors.ErrMalformedResponse, "empty response")
	}
	if trimmed[0] == '[' {
		items, err := decodeArray[T](trimmed)
		if err != nil {
			return zero, err
		}
		if len(items) == 0 {
			return zero, appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return items[0], nil
	}
	if trimmed[0] != '{' {
		return zero, appErrors.Clone(appErrors.ErrMalformedResponse, "expected an object")
	}
	obj, err := object(trimmed)
	if err != nil {
		return zero, err
	}
	wrapped := enveloped(obj, keys)
	if wrapped {
		if err := CheckStatus(trimmed); err != nil {
			return zero, err
		}
	}
	payload, ok := pick(obj, keys)
	if !ok {
		if wrapped {
			return zero, appErrors.Clone(appErrors.ErrMalformedResponse, "response has no record payload")
		}
		payload = trimmed
	}
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return zero, appErrors.Clone(appErrors.ErrNotFound, "record not found")
	}
	if payload[0] == '[' {
		return DecodeObject[T](payload)
	}
	var out T
	if err := sonic.Unmarshal(payload, &out); err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrMalformedResponse.Code, appErrors.ErrMalformedResponse.Status, "record has unexpected fields")
	}
	return out, nil
}

func decodeArray[T any](raw []byte) ([]T, error) {
	var elems []json.RawMessage
	if err := sonic.Unmarshal(raw, &elems); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedResponse.Code, appErrors.ErrMalformedResponse.Status, "unreadable list")
	}
	out := make([]T, 0, len(elems))
	for _, elem := range elems {
		var item T
		if err := sonic.Unmarshal(elem, &item); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrMalformedResponse.Code, appErrors.ErrMalformedResponse.Status, "list item has unexpected fields")
		}
		out = append(out, item)
	}
	return out, nil
}

func decodeKeyed[T any](raw []byte) ([]T, error) {
	var keyed map[string]json.RawMessage
	if err := sonic.Unmarshal(raw, &keyed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedResponse.Code, appErrors.ErrMalformedResponse.Status, "unreadable keyed list")
	}
	ids := make([]string, 0, len(keyed))
	for id := range keyed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		var item T
		if err := sonic.Unmarshal(keyed[id], &item); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrMalformedResponse.Code, appErrors.ErrMalformedResponse.Status, "keyed item has unexpected fields")
		}
		out = append(out, item)
	}
	return out, nil
}

func object(raw []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := sonic.Unmarshal(raw, &obj); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedResponse.Code, appErrors.ErrMalformedResponse.Status, "unreadable object")
	}
	return obj, nil
}

func pick(obj map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	if len(keys) == 0 {
		keys = []string{DefaultDataKey}
	}
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// enveloped reports whether obj is a response wrapper rather than a bare record. Records may carry
// their own status (PAID, active), so status only marks a wrapper when it holds a result flag.
func enveloped(obj map[string]json.RawMessage, keys []string) bool {
	if _, ok := pick(obj, keys); ok {
		return true
	}
	for _, name := range []string{"status", "success"} {
		raw, ok := obj[name]
		if !ok {
			continue
		}
		var flag Text
		if err := sonic.Unmarshal(raw, &flag); err != nil {
			continue
		}
		if successful(string(flag)) || failed(string(flag)) {
			return true
		}
	}
	return false
}

func failed(flag string) bool {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "error", "fail", "failed", "failure", "false", "0":
		return true
	default:
		return false
	}
}

func successful(flag string) bool {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "success", "ok", "true", "1":
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
