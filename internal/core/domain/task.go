package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// ValidateIdentifiers checks that a batch names at least one identifier and that
// every identifier can be used as a directory name. Duplicates are rejected because
// two tasks with the same identifier would share a workspace.
func ValidateIdentifiers(ids []string) error {
	if len(ids) == 0 {
		return ErrNoIdentifiers
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if err := validateIdentifier(id); err != nil {
			return err
		}
		if _, ok := seen[id]; ok {
			return zerr.With(ErrDuplicateIdentifier, "id", id)
		}
		seen[id] = struct{}{}
	}

	return nil
}

func validateIdentifier(id string) error {
	switch {
	case id == "":
		return zerr.With(ErrInvalidIdentifier, "reason", "empty")
	case id == "." || id == ".." || id == ".git":
		return zerr.With(zerr.With(ErrInvalidIdentifier, "id", id), "reason", "reserved path")
	case strings.ContainsAny(id, `/\`):
		return zerr.With(zerr.With(ErrInvalidIdentifier, "id", id), "reason", "contains a path separator")
	case strings.HasPrefix(id, "-"):
		return zerr.With(zerr.With(ErrInvalidIdentifier, "id", id), "reason", "starts with '-'")
	}
	return nil
}
