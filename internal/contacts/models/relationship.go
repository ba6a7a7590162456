package models

// Relationship classification values. The classification determines which
// relationship-to-prisoner codes are valid, so the two fields are reconciled
// together: a new classification sits in the pending slot until the code step
// confirms it.
const (
	RelationshipTypeSocial   = "S"
	RelationshipTypeOfficial = "O"
)

// Relationship holds the confirmed classification/code pair plus the pending
// classification of an edit in flight. The confirmed pair is always mutually
// consistent; abandoning a journey mid-edit leaves it untouched.
type Relationship struct {
	Type        string `json:"relationshipType,omitempty"`
	ToPrisoner  string `json:"relationshipToPrisoner,omitempty"`
	PendingType string `json:"pendingNewRelationshipType,omitempty"`
}

// Stage records a newly submitted classification in the pending slot and
// reports whether it differs from the confirmed value. Resubmitting the
// confirmed classification clears any stale pending value instead.
func (r *Relationship) Stage(newType string) (changed bool) {
	if newType == r.Type {
		r.PendingType = ""
		return false
	}
	r.PendingType = newType
	return true
}

// Confirm sets the relationship-to-prisoner code and promotes the pending
// classification in the same step, so the confirmed pair changes atomically
// within one journey update.
func (r *Relationship) Confirm(toPrisoner string) {
	if r.PendingType != "" {
		r.Type = r.PendingType
		r.PendingType = ""
	}
	r.ToPrisoner = toPrisoner
}

// EffectiveType is the classification the code-selection step should offer
// options for: the pending value when an edit is in flight, otherwise the
// confirmed one.
func (r *Relationship) EffectiveType() string {
	if r.PendingType != "" {
		return r.PendingType
	}
	return r.Type
}
