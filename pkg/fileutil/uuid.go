package fileutil

import (
	"strings"

	"github.com/google/uuid"
)

// UUID returns a random version 4 UUID without dashes.
func UUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
