// Package model holds the domain types shared by the service,
// repository and transport layers.
package model

import "errors"

// ErrDuplicateID is returned by a sink when a record with the same id is
// already stored.
var ErrDuplicateID = errors.New("visitor id already exists")

// Visitor is the document persisted for every successful greeting.
//
// ID is generated per request and doubles as the partition key. A Visitor
// is only built from a validated name and is never updated afterwards.
type Visitor struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Visit is the outcome of a successful invocation: the text sent back to the
// caller and the record handed to the document sink.
type Visit struct {
	Response string  `json:"response"`
	Record   Visitor `json:"record"`
}
