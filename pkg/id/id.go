package id

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func Generate() string {
	return uuid.New().String()
}

// Reference builds a human-traceable reference like "wdr-<uuid>-<unix>".
// The uuid keeps it unique for the process lifetime; the prefix and
// timestamp exist purely for support tooling.
func Reference(prefix string) string {
	return fmt.Sprintf("%s-%s-%d", prefix, uuid.New().String(), time.Now().UnixNano())
}

func IsValidUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}
