package entities

import (
	"fmt"
	"strings"

	"mutualexchange/src/domain"
)

// TargetKind enumerates the external subjects an exchange may concern.
type TargetKind string

const (
	TargetEvent      TargetKind = "event"
	TargetInvitation TargetKind = "invitation"
	TargetProject    TargetKind = "project"
)

func ParseTargetKind(value string) (TargetKind, error) {
	switch TargetKind(value) {
	case TargetEvent, TargetInvitation, TargetProject:
		return TargetKind(value), nil
	}
	return "", domain.NewValidationError("target.kind", fmt.Sprintf("unknown target kind %q", value))
}

// Target is the typed replacement for a (type, id) pair. A nil *Target means
// the exchange has no target.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

func NewTarget(kind, id string) (*Target, error) {
	k, err := ParseTargetKind(kind)
	if err != nil {
		return nil, err
	}
	t := &Target{Kind: k, ID: strings.TrimSpace(id)}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Target) Validate() error {
	if _, err := ParseTargetKind(string(t.Kind)); err != nil {
		return err
	}
	if t.ID == "" {
		return domain.NewValidationError("target.id", "target id is required when a target kind is set")
	}
	return nil
}

// Columns splits the target back into its nullable storage columns.
func (t *Target) Columns() (kind *string, id *string) {
	if t == nil {
		return nil, nil
	}
	k := string(t.Kind)
	i := t.ID
	return &k, &i
}

// TargetFromColumns rebuilds a target from storage columns. ok is false when
// the pair is malformed (one side set without the other, or an unknown kind);
// the returned target is then nil.
func TargetFromColumns(kind, id *string) (target *Target, ok bool) {
	hasKind := kind != nil && *kind != ""
	hasID := id != nil && *id != ""
	switch {
	case !hasKind && !hasID:
		return nil, true
	case hasKind != hasID:
		return nil, false
	}
	k, err := ParseTargetKind(*kind)
	if err != nil {
		return nil, false
	}
	return &Target{Kind: k, ID: *id}, true
}

// SameTarget is true when both are absent, or both have equal kind and id.
func SameTarget(a, b *Target) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind == b.Kind && a.ID == b.ID
}
