package domain

import (
	"encoding/json"
	"time"
)

// Variant is the display intent of a toast.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

func (v Variant) IsValid() bool {
	switch v {
	case VariantDefault, VariantDestructive:
		return true
	}
	return false
}

// Toast is a transient, auto-expiring notification. It is never mutated
// after creation, only inserted into or removed from a queue.
type Toast struct {
	ID          string    `json:"id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Variant     Variant   `json:"variant"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ToastRequest carries the caller-supplied fields of a toast. Every field is
// optional.
type ToastRequest struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Variant     Variant `json:"variant,omitempty"`
}

// UnmarshalJSON accepts any JSON object. A field that is not a JSON string is
// treated as missing, so Normalize supplies its default. Only a body that is
// not an object at all is an error.
func (r *ToastRequest) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	str := func(key string) string {
		var v string
		if raw, ok := fields[key]; ok {
			_ = json.Unmarshal(raw, &v)
		}
		return v
	}
	*r = ToastRequest{
		Title:       str("title"),
		Description: str("description"),
		Variant:     Variant(str("variant")),
	}
	return nil
}

// Normalize applies defaults. Unknown variants fall back to VariantDefault
// rather than being rejected.
func (r ToastRequest) Normalize() ToastRequest {
	if !r.Variant.IsValid() {
		r.Variant = VariantDefault
	}
	return r
}

// RemovalReason records why a toast left the active set.
type RemovalReason string

const (
	RemovedExpired   RemovalReason = "expired"
	RemovedDismissed RemovalReason = "dismissed"
	RemovedClosed    RemovalReason = "closed"
)
