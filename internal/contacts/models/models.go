// Package models holds the contact domain values that journey payloads are
// assembled from.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Name is a contact's name as captured by the enter-name step.
type Name struct {
	Title       string `json:"title,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	MiddleNames string `json:"middleNames,omitempty"`
	LastName    string `json:"lastName,omitempty"`
}

// Reversed formats the name surname-first for lists and summaries. Inputs of
// other shapes (prisoner search results, existing contact records) convert to
// Name at the call site rather than being probed for fields dynamically.
func (n Name) Reversed() string {
	if n.LastName == "" && n.FirstName == "" {
		return ""
	}
	parts := []string{n.FirstName}
	if n.MiddleNames != "" {
		parts = append(parts, n.MiddleNames)
	}
	return fmt.Sprintf("%s, %s", n.LastName, strings.Join(parts, " "))
}

// DateOfBirth is the enter-dob step's answer. Known distinguishes "no date
// entered yet" from "the user said the date is not known".
type DateOfBirth struct {
	Known bool `json:"known"`
	Day   int  `json:"day,omitempty"`
	Month int  `json:"month,omitempty"`
	Year  int  `json:"year,omitempty"`
}

// Date returns the date of birth as a time value, or false when unknown.
func (d DateOfBirth) Date() (time.Time, bool) {
	if !d.Known {
		return time.Time{}, false
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC), true
}

// Address is the add-address journey's payload body.
type Address struct {
	Flat           string `json:"flat,omitempty"`
	Premise        string `json:"premise,omitempty"`
	Street         string `json:"street,omitempty"`
	Locality       string `json:"locality,omitempty"`
	Town           string `json:"town,omitempty"`
	County         string `json:"county,omitempty"`
	Postcode       string `json:"postcode,omitempty"`
	Country        string `json:"country,omitempty"`
	NoFixedAddress bool   `json:"noFixedAddress,omitempty"`
}

// Restriction is the add-restriction journey's payload body.
type Restriction struct {
	Type       string `json:"type,omitempty"`
	StartDate  string `json:"startDate,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
	Comments   string `json:"comments,omitempty"`
}

// Employment is one entry in the update-employments journey.
type Employment struct {
	EmployerID   int64  `json:"employerId"`
	EmployerName string `json:"employerName"`
	Active       bool   `json:"active"`
}
