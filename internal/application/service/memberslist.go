package service

import (
	"strings"

	"github.com/LeonVreling/oms-statutory/internal/application/models"
)

// IsOnList reports whether an applicant appears on the members list supplied
// for their body. A nil list (no roster registered for the body) is false.
//
// A member matches by equal user id alone, or by case-insensitive equality
// of both first and last name alone. Matching is otherwise exact: no
// trimming, no fuzzy or partial matches.
func IsOnList(app *models.Application, list *models.MembersList) bool {
	if list == nil {
		return false
	}
	for _, m := range list.Members {
		if m.UserID == app.UserID {
			return true
		}
		if strings.EqualFold(m.FirstName, app.FirstName) && strings.EqualFold(m.LastName, app.LastName) {
			return true
		}
	}
	return false
}
