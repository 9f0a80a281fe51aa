// Package errors provides the classified error primitives used across blogfreeze.
//
// Every failure the pipeline can produce maps onto one ErrorCategory:
//   - CategoryScan: the content root is missing or unreadable (fatal at startup)
//   - CategoryMetadata: a content header is malformed or lacks a usable date (fatal at startup)
//   - CategoryNotFound: a requested page has no index entry (per request)
//   - CategoryRender: markup conversion failed for one post (per request / per page)
//
// Errors are built through a fluent builder and presented by the HTTP and CLI adapters:
//
//	err := errors.MetadataError("missing required date field").
//		WithContext("file", path).
//		Build()
package errors
