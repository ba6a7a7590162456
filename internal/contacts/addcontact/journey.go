// Package addcontact implements the add-contact wizard: a top-level journey
// reachable from a durable start URL, so stale journey ids restart the wizard
// rather than 404.
package addcontact

import (
	"fmt"

	"contactsadmin/internal/contacts/models"
)

// Kind is the session key the journey collection is stored under.
const Kind = "addContactJourneys"

// Step names in linear order.
const (
	StepEnterName              = "enter-name"
	StepEnterDOB               = "enter-dob"
	StepRelationshipType       = "select-relationship-type"
	StepRelationshipToPrisoner = "select-relationship-to-prisoner"
	StepCheckAnswers           = "check-answers"
)

// Payload is the add-contact journey's accumulated answers.
type Payload struct {
	Name         models.Name         `json:"name"`
	DateOfBirth  *models.DateOfBirth `json:"dateOfBirth,omitempty"`
	Relationship models.Relationship `json:"relationship"`
}

// StartURL is the journey kind's durable entry point.
func StartURL(prisonerNumber string) string {
	return fmt.Sprintf("/prisoner/%s/contacts/create/start", prisonerNumber)
}

// StepURL builds a step's address following the
// /<resource-path>/<step-name>/{journeyId} convention.
func StepURL(prisonerNumber, step, journeyID string) string {
	return fmt.Sprintf("/prisoner/%s/contacts/create/%s/%s", prisonerNumber, step, journeyID)
}
