package ontology

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-version"
)

// ErrUnsupportedVersion is returned when the ontology is older than required
var ErrUnsupportedVersion = errors.New("unsupported ontology version")

// CheckVersion compares an ontology's owl:versionInfo against a minimum.
// An empty minimum accepts anything.
func CheckVersion(found, minimum string) error {
	if minimum == "" {
		return nil
	}
	want, err := version.NewVersion(minimum)
	if err != nil {
		return fmt.Errorf("invalid minimum ontology version %q: %w", minimum, err)
	}
	if found == "" {
		return fmt.Errorf("%w: no owl:versionInfo, need >= %s", ErrUnsupportedVersion, want)
	}
	got, err := version.NewVersion(found)
	if err != nil {
		return fmt.Errorf("%w: unparseable version %q", ErrUnsupportedVersion, found)
	}
	if got.LessThan(want) {
		return fmt.Errorf("%w: %s < %s", ErrUnsupportedVersion, got, want)
	}
	return nil
}
