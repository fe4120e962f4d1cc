package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReviewTargetValidate(t *testing.T) {
	id := primitive.NewObjectID()
	tests := []struct {
		name    string
		target  ReviewTarget
		wantErr bool
	}{
		{"book target", ReviewTarget{Kind: TargetBook, ID: id}, false},
		{"author target", ReviewTarget{Kind: TargetAuthor, ID: id}, false},
		{"unknown kind", ReviewTarget{Kind: "publisher", ID: id}, true},
		{"empty kind", ReviewTarget{ID: id}, true},
		{"missing id", ReviewTarget{Kind: TargetBook}, true},
		{"zero value", ReviewTarget{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnumMembership(t *testing.T) {
	assert.True(t, In(Genres, "Fiction"))
	assert.False(t, In(Genres, "fiction"), "membership is case-sensitive")
	assert.False(t, In(Genres, ""))

	assert.True(t, AllIn(Languages, []string{"English", "French"}))
	assert.False(t, AllIn(Languages, []string{"English", "Klingon"}))
	assert.True(t, AllIn(Languages, nil), "empty set is always valid")
}
