// --- File: internal/pipeline/transformer.go ---
// Package pipeline contains the core record processing components for the service.
package pipeline

import (
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"github.com/tinywideclouds/go-notification-trigger/pkg/dispatch"
)

// Document field names, as written by the upstream producer.
const (
	fieldUserID    = "userId"
	fieldTitle     = "title"
	fieldBody      = "body"
	fieldData      = "data"
	fieldFCMTokens = "fcmTokens"
)

// Decoder produces the record for one invocation. Decoding is deferred so
// that failures inside it are absorbed by the Processor like any other.
type Decoder func() (*dispatch.NotificationRecord, error)

// DecodeSnapshot maps a document read through the Firestore client onto a
// NotificationRecord using its firestore struct tags.
func DecodeSnapshot(doc *firestore.DocumentSnapshot) (*dispatch.NotificationRecord, error) {
	var rec dispatch.NotificationRecord
	if err := doc.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("document %s: %w: %v", doc.Ref.ID, dispatch.ErrMalformedRecord, err)
	}
	return &rec, nil
}

// DecodeDocumentFields maps the protobuf fields of a Firestore event document
// onto a NotificationRecord. Null values are treated as absent.
func DecodeDocumentFields(fields map[string]*firestoredata.Value) (*dispatch.NotificationRecord, error) {
	rec := &dispatch.NotificationRecord{}
	var err error

	if userID, err := optionalString(fields, fieldUserID); err != nil {
		return nil, err
	} else if userID != nil {
		rec.UserID = *userID
	}
	if rec.Title, err = optionalString(fields, fieldTitle); err != nil {
		return nil, err
	}
	if rec.Body, err = optionalString(fields, fieldBody); err != nil {
		return nil, err
	}
	if rec.Data, err = stringMap(fields, fieldData); err != nil {
		return nil, err
	}
	if rec.FCMTokens, err = stringArray(fields, fieldFCMTokens); err != nil {
		return nil, err
	}
	return rec, nil
}

func isAbsent(v *firestoredata.Value) bool {
	if v == nil || v.GetValueType() == nil {
		return true
	}
	_, isNull := v.GetValueType().(*firestoredata.Value_NullValue)
	return isNull
}

func optionalString(fields map[string]*firestoredata.Value, name string) (*string, error) {
	v := fields[name]
	if isAbsent(v) {
		return nil, nil
	}
	s, ok := v.GetValueType().(*firestoredata.Value_StringValue)
	if !ok {
		return nil, fmt.Errorf("field %q is %T, want string: %w", name, v.GetValueType(), dispatch.ErrMalformedRecord)
	}
	return &s.StringValue, nil
}

func stringMap(fields map[string]*firestoredata.Value, name string) (map[string]string, error) {
	v := fields[name]
	if isAbsent(v) {
		return nil, nil
	}
	m, ok := v.GetValueType().(*firestoredata.Value_MapValue)
	if !ok {
		return nil, fmt.Errorf("field %q is %T, want map: %w", name, v.GetValueType(), dispatch.ErrMalformedRecord)
	}

	out := make(map[string]string, len(m.MapValue.GetFields()))
	for key, entry := range m.MapValue.GetFields() {
		s, ok := entry.GetValueType().(*firestoredata.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("field %q key %q is %T, want string: %w", name, key, entry.GetValueType(), dispatch.ErrMalformedRecord)
		}
		out[key] = s.StringValue
	}
	return out, nil
}

func stringArray(fields map[string]*firestoredata.Value, name string) ([]string, error) {
	v := fields[name]
	if isAbsent(v) {
		return nil, nil
	}
	arr, ok := v.GetValueType().(*firestoredata.Value_ArrayValue)
	if !ok {
		return nil, fmt.Errorf("field %q is %T, want array: %w", name, v.GetValueType(), dispatch.ErrMalformedRecord)
	}

	out := make([]string, 0, len(arr.ArrayValue.GetValues()))
	for idx, entry := range arr.ArrayValue.GetValues() {
		s, ok := entry.GetValueType().(*firestoredata.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("field %q[%d] is %T, want string: %w", name, idx, entry.GetValueType(), dispatch.ErrMalformedRecord)
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}
