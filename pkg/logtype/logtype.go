// Package logtype enumerates geocaching log types as stored in field notes.
package logtype

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Type is a log type code. Codes are part of the wire format and must not be
// renumbered.
type Type int32

// Log type codes
const (
	Unknown             Type = -1
	Found               Type = 0
	NotFound            Type = 1
	WriteNote           Type = 2
	NeedsMaintenance    Type = 3
	OwnerMaintenance    Type = 4
	PublishListing      Type = 5
	EnableListing       Type = 6
	TemporarilyDisable  Type = 7
	UpdateCoordinates   Type = 8
	Announcement        Type = 9
	WillAttend          Type = 10
	Attended            Type = 11
	PostReviewerNote    Type = 12
	NeedsArchived       Type = 13
	WebcamPhotoTaken    Type = 14
	RetractListing      Type = 15
	Archive             Type = 16
	Unarchive           Type = 17
	PermanentlyArchived Type = 18
)

// Default is the type a new field note starts with
const Default = Found

var names = map[Type]string{
	Unknown:             "unknown",
	Found:               "found",
	NotFound:            "not-found",
	WriteNote:           "write-note",
	NeedsMaintenance:    "needs-maintenance",
	OwnerMaintenance:    "owner-maintenance",
	PublishListing:      "publish-listing",
	EnableListing:       "enable-listing",
	TemporarilyDisable:  "temporarily-disable",
	UpdateCoordinates:   "update-coordinates",
	Announcement:        "announcement",
	WillAttend:          "will-attend",
	Attended:            "attended",
	PostReviewerNote:    "post-reviewer-note",
	NeedsArchived:       "needs-archived",
	WebcamPhotoTaken:    "webcam-photo-taken",
	RetractListing:      "retract-listing",
	Archive:             "archive",
	Unarchive:           "unarchive",
	PermanentlyArchived: "permanently-archived",
}

// String returns the lower-case name of t, or its numeric code if unknown
func (t Type) String() string {
	if name, ok := names[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int32(t))
}

// Valid reports whether t is a known code other than Unknown
func (t Type) Valid() bool {
	_, ok := names[t]
	return ok && t != Unknown
}

// Parse resolves a name such as "found" or "not-found". Underscores, spaces
// and case are ignored. Codes without a name are accepted in the "type(42)"
// form String produces.
func Parse(s string) (Type, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	for t, name := range names {
		if name == norm {
			return t, nil
		}
	}
	if inner, ok := strings.CutPrefix(norm, "type("); ok {
		if digits, ok := strings.CutSuffix(inner, ")"); ok {
			if code, err := strconv.ParseInt(digits, 10, 32); err == nil {
				return Type(code), nil
			}
		}
	}
	return Unknown, fmt.Errorf("unknown log type %q", s)
}

// All returns every valid type in code order
func All() []Type {
	all := make([]Type, 0, len(names)-1)
	for t := Found; t <= PermanentlyArchived; t++ {
		all = append(all, t)
	}
	return all
}

// MarshalText implements encoding.TextMarshaler
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalJSON accepts a name, the "type(42)" form, or a bare numeric code
func (t *Type) UnmarshalJSON(data []byte) error {
	var code int32
	if err := json.Unmarshal(data, &code); err == nil {
		*t = Type(code)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("log type must be a name or a number: %w", err)
	}
	return t.UnmarshalText([]byte(s))
}
