package domain

import "errors"

// Sentinel errors of the two pipelines. Transient blob/index failures are
// wrapped db.Error values and are not redeclared here.
var (
	// ErrConversion signals an unparsable source document. Fatal for that
	// document only; sibling documents in the same batch are unaffected.
	ErrConversion = errors.New("document conversion failed")
	// ErrUnmappedDocument signals a query against a document with no known
	// index. Hard stop: retrieval cannot proceed.
	ErrUnmappedDocument = errors.New("no index mapped for document")
	// ErrMissingContext signals a retrieved match whose chunk text cannot be
	// dereferenced. Surfaced as a "no answer" result, not a system fault.
	ErrMissingContext = errors.New("no retrievable context for match")
	// ErrGeneration signals a completion service failure, cause preserved.
	ErrGeneration = errors.New("answer generation failed")
	// ErrUnknownStrategy signals an unrecognized strategy selector.
	ErrUnknownStrategy = errors.New("unknown strategy")
)
