package models

import (
	dErrors "github.com/LeonVreling/oms-statutory/pkg/domain-errors"
)

// View is a named projection policy over an event's applications: who may
// request it, which applications survive, and which fields are exposed.
type View string

const (
	// ViewAll exposes every application with the full record.
	ViewAll View = "all"
	// ViewAccepted is the participants list: accepted, not cancelled. It
	// becomes public once the event's publish deadline has passed, and each
	// record is annotated with the members-list flag.
	ViewAccepted View = "accepted"
	// ViewJuridical lists accepted fee-paying participants for quorum
	// purposes.
	ViewJuridical View = "juridical"
	// ViewIncoming is the arrival roster of accepted participants.
	ViewIncoming View = "incoming"
	// ViewNetwork lists every non-cancelled applicant.
	ViewNetwork View = "network"
)

// ParseView resolves a view identifier. Unknown identifiers are rejected as
// not-found before any repository or permission call.
func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewAll, ViewAccepted, ViewJuridical, ViewIncoming, ViewNetwork:
		return View(s), nil
	default:
		return "", dErrors.Newf(dErrors.CodeNotFound, "unknown applications view %q", s)
	}
}

// PublicAfterDeadline reports whether the view no longer requires the
// caller to hold its right once the event's publish deadline has passed.
func (v View) PublicAfterDeadline() bool {
	return v == ViewAccepted
}

// Eligible is the view's filter predicate.
func (v View) Eligible(app *Application) bool {
	switch v {
	case ViewAll:
		return true
	case ViewAccepted, ViewIncoming:
		return app.Status == StatusAccepted && !app.Cancelled
	case ViewJuridical:
		return app.Status == StatusAccepted && app.PaidFee && !app.Cancelled
	case ViewNetwork:
		return !app.Cancelled
	default:
		return false
	}
}

// ProjectedApplication is a field-masked application record. Each view emits
// exactly its declared field set, no extra and no missing keys.
type ProjectedApplication map[string]any

// Mask applies the view's field mask. The annotations map carries computed
// fields (currently only is_on_memberslist for the accepted view); it is
// merged before masking so annotation fields pass through the mask like any
// other declared field.
func (v View) Mask(app *Application, annotations map[string]any) ProjectedApplication {
	switch v {
	case ViewAll:
		return ProjectedApplication{
			"id":         app.ID.String(),
			"event_id":   app.EventID,
			"user_id":    app.UserID,
			"body_id":    app.BodyID,
			"first_name": app.FirstName,
			"last_name":  app.LastName,
			"status":     app.Status,
			"cancelled":  app.Cancelled,
			"paid_fee":   app.PaidFee,
		}
	case ViewAccepted:
		out := ProjectedApplication{
			"user_id":    app.UserID,
			"body_id":    app.BodyID,
			"first_name": app.FirstName,
			"last_name":  app.LastName,
		}
		if flag, ok := annotations["is_on_memberslist"]; ok {
			out["is_on_memberslist"] = flag
		}
		return out
	case ViewJuridical:
		return ProjectedApplication{
			"user_id":    app.UserID,
			"body_id":    app.BodyID,
			"first_name": app.FirstName,
			"last_name":  app.LastName,
			"paid_fee":   app.PaidFee,
		}
	case ViewIncoming:
		return ProjectedApplication{
			"user_id":    app.UserID,
			"body_id":    app.BodyID,
			"first_name": app.FirstName,
			"last_name":  app.LastName,
			"status":     app.Status,
		}
	case ViewNetwork:
		return ProjectedApplication{
			"user_id":    app.UserID,
			"body_id":    app.BodyID,
			"first_name": app.FirstName,
			"last_name":  app.LastName,
		}
	default:
		return nil
	}
}
