// Package authz implements the ownership policy that gates every event
// read and write. An event is visible and mutable only by the user
// recorded in its createdBy field; the attendee list records
// participation but grants nothing.
package authz

import "go.mongodb.org/mongo-driver/bson"

// CanAccess reports whether the identity may read or mutate a record
// owned by ownerID. Pure predicate, no side effects. The role field on
// users is deliberately not consulted: admin has no special event access.
func CanAccess(identityID, ownerID string) bool {
	return identityID != "" && identityID == ownerID
}

// OwnerScope builds a Mongo filter pre-scoped to the identity's records.
// Every store query issued on behalf of a request goes through this so
// ownership is enforced in the query itself, never as a post-fetch check.
type OwnerScope struct {
	OwnerID string
}

// Scope returns a filter matching all records owned by the identity.
func (s OwnerScope) Scope() bson.M {
	return bson.M{"createdBy": s.OwnerID}
}

// ScopeWith returns the owner filter merged with extra criteria. The
// extra map is copied, not mutated, and can never override the owner
// clause.
func (s OwnerScope) ScopeWith(extra bson.M) bson.M {
	f := bson.M{}
	for k, v := range extra {
		f[k] = v
	}
	f["createdBy"] = s.OwnerID
	return f
}
