// Package policy holds the access-control rules for profiles, books and
// reviews. Every mutation in the services goes through Engine.Authorize
// before it reaches a repository.
package policy

import (
	"bookreview/internal/apperror"
)

// Actor is the caller of an operation. The zero value is the anonymous actor.
type Actor struct {
	ID string
}

// Anonymous returns an actor with no identity.
func Anonymous() Actor {
	return Actor{}
}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool {
	return a.ID != ""
}

type Resource string

const (
	ResourceProfile Resource = "profile"
	ResourceBook    Resource = "book"
	ResourceReview  Resource = "review"
)

type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Rating bounds for reviews, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// FieldDisplayName is the only profile field its owner may change.
const FieldDisplayName = "display_name"

// Request describes one operation on one resource.
type Request struct {
	Resource  Resource
	Operation Operation

	// OwnerID is the stored owner of the target: the profile id, the book
	// owner or the review author. Used by update and delete.
	OwnerID string

	// SubmittedOwnerID is the owner reference carried by the payload. On
	// create it must equal the actor; on update it must not move ownership.
	SubmittedOwnerID string

	// Fields lists the fields an update touches.
	Fields []string

	// Rating is the submitted review rating.
	Rating int

	// ReviewExists is set on review create when the actor already holds a
	// review for the book.
	ReviewExists bool
}

// Engine evaluates requests against the rule table.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Authorize returns nil when actor may perform req, ErrUnauthorized when a
// rights rule is violated and ErrConstraintViolation when a review breaks
// the rating bound or the one-review-per-book rule.
func (e *Engine) Authorize(actor Actor, req Request) error {
	if req.Operation == OpRead {
		return nil
	}

	switch req.Resource {
	case ResourceProfile:
		return e.authorizeProfile(actor, req)
	case ResourceBook:
		return e.authorizeBook(actor, req)
	case ResourceReview:
		return e.authorizeReview(actor, req)
	default:
		return apperror.Unauthorizedf("unknown resource %q", req.Resource)
	}
}

func (e *Engine) authorizeProfile(actor Actor, req Request) error {
	if req.Operation != OpUpdate {
		// profiles are created by registration and never deleted here
		return apperror.Unauthorizedf("profile %s is not permitted", req.Operation)
	}
	if err := requireOwner(actor, req.OwnerID, "profile"); err != nil {
		return err
	}
	for _, f := range req.Fields {
		if f != FieldDisplayName {
			return apperror.Unauthorizedf("profile field %q is immutable", f)
		}
	}
	return nil
}

func (e *Engine) authorizeBook(actor Actor, req Request) error {
	switch req.Operation {
	case OpCreate:
		return requireSubmitter(actor, req.SubmittedOwnerID, "book")
	case OpUpdate:
		if err := requireOwner(actor, req.OwnerID, "book"); err != nil {
			return err
		}
		return requireStableOwner(req, "book")
	case OpDelete:
		return requireOwner(actor, req.OwnerID, "book")
	}
	return apperror.Unauthorizedf("book %s is not permitted", req.Operation)
}

func (e *Engine) authorizeReview(actor Actor, req Request) error {
	switch req.Operation {
	case OpCreate:
		if err := requireSubmitter(actor, req.SubmittedOwnerID, "review"); err != nil {
			return err
		}
		if err := CheckRating(req.Rating); err != nil {
			return err
		}
		if req.ReviewExists {
			return apperror.ConstraintViolationf("actor already reviewed this book")
		}
		return nil
	case OpUpdate:
		if err := requireOwner(actor, req.OwnerID, "review"); err != nil {
			return err
		}
		if err := requireStableOwner(req, "review"); err != nil {
			return err
		}
		return CheckRating(req.Rating)
	case OpDelete:
		return requireOwner(actor, req.OwnerID, "review")
	}
	return apperror.Unauthorizedf("review %s is not permitted", req.Operation)
}

// CheckRating enforces the inclusive 1..5 bound.
func CheckRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return apperror.ConstraintViolationf("rating %d outside %d..%d", rating, MinRating, MaxRating)
	}
	return nil
}

func requireSubmitter(actor Actor, submitted, what string) error {
	if !actor.Authenticated() {
		return apperror.Unauthorizedf("anonymous actor cannot create a %s", what)
	}
	if submitted != actor.ID {
		return apperror.Unauthorizedf("%s owner must be the creating actor", what)
	}
	return nil
}

func requireOwner(actor Actor, ownerID, what string) error {
	if !actor.Authenticated() || actor.ID != ownerID {
		return apperror.Unauthorizedf("actor does not own this %s", what)
	}
	return nil
}

func requireStableOwner(req Request, what string) error {
	if req.SubmittedOwnerID != "" && req.SubmittedOwnerID != req.OwnerID {
		return apperror.Unauthorizedf("%s ownership cannot be transferred", what)
	}
	return nil
}
