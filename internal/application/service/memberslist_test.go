package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LeonVreling/oms-statutory/internal/application/models"
)

func TestIsOnList(t *testing.T) {
	app := &models.Application{
		UserID:    42,
		BodyID:    7,
		FirstName: "Helga",
		LastName:  "Brandt",
	}

	t.Run("no list registered for the body", func(t *testing.T) {
		assert.False(t, IsOnList(app, nil))
	})

	t.Run("empty list", func(t *testing.T) {
		assert.False(t, IsOnList(app, &models.MembersList{BodyID: 7}))
	})

	t.Run("matches by user id even when names differ", func(t *testing.T) {
		list := &models.MembersList{BodyID: 7, Members: []models.Member{
			{UserID: 42, FirstName: "Completely", LastName: "Different"},
		}}
		assert.True(t, IsOnList(app, list))
	})

	t.Run("matches by case-insensitive name even when user id differs", func(t *testing.T) {
		list := &models.MembersList{BodyID: 7, Members: []models.Member{
			{UserID: 999, FirstName: "HELGA", LastName: "brandt"},
		}}
		assert.True(t, IsOnList(app, list))
	})

	t.Run("requires both names to match", func(t *testing.T) {
		list := &models.MembersList{BodyID: 7, Members: []models.Member{
			{UserID: 999, FirstName: "Helga", LastName: "Schmidt"},
		}}
		assert.False(t, IsOnList(app, list))
	})

	t.Run("no trimming or partial matching", func(t *testing.T) {
		list := &models.MembersList{BodyID: 7, Members: []models.Member{
			{UserID: 999, FirstName: " Helga", LastName: "Brandt"},
			{UserID: 998, FirstName: "Helg", LastName: "Brandt"},
		}}
		assert.False(t, IsOnList(app, list))
	})

	t.Run("any member may match", func(t *testing.T) {
		list := &models.MembersList{BodyID: 7, Members: []models.Member{
			{UserID: 1, FirstName: "Other", LastName: "Person"},
			{UserID: 42, FirstName: "X", LastName: "Y"},
		}}
		assert.True(t, IsOnList(app, list))
	})
}
