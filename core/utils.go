package core

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ParseID parses a backend record id. Ids are strictly positive.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(CleanString(s), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid id %q", s)
	}
	if id <= 0 {
		return 0, errors.Errorf("invalid id %q", s)
	}
	return id, nil
}
