package domain

import "encoding/json"

// MediaRefs is an ordered list of media references (absolute URL,
// root-relative path, or bare filename).
//
// Legacy rows store the list either as a real JSON array or as a
// JSON-encoded string containing an array, and sometimes as plain garbage.
// Parsing is deliberately forgiving: anything unreadable becomes an empty
// list so a broken media column can never block a property sync.
type MediaRefs []string

func (m *MediaRefs) UnmarshalJSON(data []byte) error {
	var refs []string
	if err := json.Unmarshal(data, &refs); err == nil {
		*m = refs
		return nil
	}

	// Double-encoded variant: a JSON string whose content is itself an array.
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		var inner []string
		if err := json.Unmarshal([]byte(raw), &inner); err == nil {
			*m = inner
			return nil
		}
	}

	*m = MediaRefs{}
	return nil
}

// ParseMediaRefs parses a raw text column value into MediaRefs.
// Returns an empty list on any parse failure, never an error.
func ParseMediaRefs(raw string) MediaRefs {
	if raw == "" {
		return MediaRefs{}
	}

	var refs MediaRefs
	if err := refs.UnmarshalJSON([]byte(raw)); err != nil || refs == nil {
		return MediaRefs{}
	}
	return refs
}
