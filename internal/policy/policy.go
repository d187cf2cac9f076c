// Package policy holds the authorization predicates shared by every
// mutating operation. They are pure functions over (current user,
// resource): no state, no side effects, just booleans. Services call
// them before touching the repository so the guard logic lives in one
// place instead of being repeated per handler.
package policy

// Authored is implemented by any resource that has an author
// (questions, answers, comments).
type Authored interface {
	AuthorID() string
}

// SignedIn reports whether the request carries a resolved user. An
// empty userID means the caller is anonymous.
func SignedIn(userID string) bool {
	return userID != ""
}

// IsAuthor reports whether userID is the author of the resource.
// Anonymous callers are never authors.
func IsAuthor(userID string, resource Authored) bool {
	if !SignedIn(userID) || resource == nil {
		return false
	}
	return resource.AuthorID() == userID
}
