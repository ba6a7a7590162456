package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelationshipStage(t *testing.T) {
	t.Run("different classification is staged, confirmed pair untouched", func(t *testing.T) {
		r := Relationship{Type: RelationshipTypeSocial, ToPrisoner: "MOT"}

		changed := r.Stage(RelationshipTypeOfficial)

		assert.True(t, changed)
		assert.Equal(t, RelationshipTypeSocial, r.Type)
		assert.Equal(t, "MOT", r.ToPrisoner)
		assert.Equal(t, RelationshipTypeOfficial, r.PendingType)
	})

	t.Run("same classification is not a change", func(t *testing.T) {
		r := Relationship{Type: RelationshipTypeSocial, ToPrisoner: "MOT"}

		changed := r.Stage(RelationshipTypeSocial)

		assert.False(t, changed)
		assert.Empty(t, r.PendingType)
	})

	t.Run("resubmitting the confirmed value clears a stale pending edit", func(t *testing.T) {
		r := Relationship{Type: RelationshipTypeSocial, ToPrisoner: "MOT"}
		r.Stage(RelationshipTypeOfficial)

		changed := r.Stage(RelationshipTypeSocial)

		assert.False(t, changed)
		assert.Empty(t, r.PendingType)
		assert.Equal(t, RelationshipTypeSocial, r.Type)
	})

	t.Run("first classification on an empty relationship is a change", func(t *testing.T) {
		r := Relationship{}

		changed := r.Stage(RelationshipTypeSocial)

		assert.True(t, changed)
		assert.Equal(t, RelationshipTypeSocial, r.PendingType)
	})
}

func TestRelationshipConfirm(t *testing.T) {
	t.Run("promotes the pending classification with the code", func(t *testing.T) {
		r := Relationship{Type: RelationshipTypeSocial, ToPrisoner: "MOT"}
		r.Stage(RelationshipTypeOfficial)

		r.Confirm("DR")

		assert.Equal(t, RelationshipTypeOfficial, r.Type)
		assert.Equal(t, "DR", r.ToPrisoner)
		assert.Empty(t, r.PendingType)
	})

	t.Run("without a pending edit only the code changes", func(t *testing.T) {
		r := Relationship{Type: RelationshipTypeSocial, ToPrisoner: "MOT"}

		r.Confirm("FA")

		assert.Equal(t, RelationshipTypeSocial, r.Type)
		assert.Equal(t, "FA", r.ToPrisoner)
	})
}

func TestRelationshipEffectiveType(t *testing.T) {
	r := Relationship{Type: RelationshipTypeSocial, ToPrisoner: "MOT"}
	assert.Equal(t, RelationshipTypeSocial, r.EffectiveType())

	r.Stage(RelationshipTypeOfficial)
	assert.Equal(t, RelationshipTypeOfficial, r.EffectiveType())

	r.Confirm("DR")
	assert.Equal(t, RelationshipTypeOfficial, r.EffectiveType())
}

func TestNameReversed(t *testing.T) {
	tests := []struct {
		name string
		in   Name
		want string
	}{
		{"full name", Name{FirstName: "John", MiddleNames: "James", LastName: "Smith"}, "Smith, John James"},
		{"no middle names", Name{FirstName: "John", LastName: "Smith"}, "Smith, John"},
		{"empty", Name{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Reversed())
		})
	}
}

func TestDateOfBirth(t *testing.T) {
	t.Run("known date", func(t *testing.T) {
		d := DateOfBirth{Known: true, Day: 14, Month: 2, Year: 1980}
		date, ok := d.Date()
		assert.True(t, ok)
		assert.Equal(t, "1980-02-14", date.Format("2006-01-02"))
	})

	t.Run("unknown date", func(t *testing.T) {
		_, ok := DateOfBirth{}.Date()
		assert.False(t, ok)
	})
}
