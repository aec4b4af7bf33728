package sqlxrepos

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// The legacy schema keeps lists, maps and the challenge triple as JSON text
// columns (empty string = unset). These helpers are the only place that shape
// leaks into; the domain models stay typed.

func marshalText(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "marshaling text column")
	}
	return string(data), nil
}

func unmarshalText(s string, v interface{}) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return errors.Wrap(err, "unmarshaling text column")
	}
	return nil
}
