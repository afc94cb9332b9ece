// Package models defines domain entities and persistence interfaces for the word count service.
//
// The package contains two categories of types:
//
// 1. Transient values:
//   - [WordCount] : a word and its frequency, used for sorted display and exports
//   - [Job] : a queued unit of work tracked in Redis until its TTL elapses
//
// 2. Persistent Entities:
//   - [Result] : the raw and stop-word filtered counts of one fetched URL
//
// All persistent entities implement the Model interface providing ID, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
