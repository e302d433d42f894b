// Package aggregate folds a collection of classified items into one YieldMap.
//
// Contributions are accumulated as exact rationals per output identifier and
// rounded up once at the end. Every converted item kind is consumed in full.
package aggregate
