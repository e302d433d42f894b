// Package recycle runs one conversion pass against a container: it reads and
// merges the rule documents, aggregates the container's items into yields and
// applies the result.
//
// Every failure that concerns the rule documents is detected before the first
// mutation. A run either applies the whole aggregation result or nothing.
package recycle
