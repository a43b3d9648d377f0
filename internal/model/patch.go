package model

import "time"

// Patch types carry partial updates. Pointer fields distinguish "not
// provided" (nil) from "provided"; Opt fields additionally distinguish an
// explicit clear-to-null from an absent key.

// ClientPatch covers the mutable client field set.
type ClientPatch struct {
	Name    *string
	ConName *string
	ConMail *string
}

// ReqPatch covers the editable request fields. Desc is append-only: it is
// never diffed against the current record, only sent when present.
type ReqPatch struct {
	Title    *string
	RefURL   *string
	ProdArea *string
	Desc     *string
}

// OptInt is an optional nullable int. Set=false omits the key entirely;
// Set=true with a nil Val sends an explicit null.
type OptInt struct {
	Set bool
	Val *int
}

// OptDate is an optional nullable date with the same key semantics as OptInt.
type OptDate struct {
	Set bool
	Val *time.Time
}

// OpenPatch updates one client's open attachment of a request.
type OpenPatch struct {
	ClientID string
	Priority OptInt
	DateTgt  OptDate
}

// ClosePatch closes a request for one client, or for all clients when
// ClientID is empty.
type ClosePatch struct {
	ClientID string
	Status   string
	Reason   string
}

// String returns a pointer to s, for building patches inline.
func String(s string) *string { return &s }

// Int returns a pointer to i.
func Int(i int) *int { return &i }

// Date returns a pointer to t.
func Date(t time.Time) *time.Time { return &t }

// SomeInt builds a set OptInt carrying v.
func SomeInt(v int) OptInt { return OptInt{Set: true, Val: &v} }

// NullInt builds a set OptInt carrying an explicit null.
func NullInt() OptInt { return OptInt{Set: true} }

// SomeDate builds a set OptDate carrying t.
func SomeDate(t time.Time) OptDate { return OptDate{Set: true, Val: &t} }

// NullDate builds a set OptDate carrying an explicit null.
func NullDate() OptDate { return OptDate{Set: true} }
