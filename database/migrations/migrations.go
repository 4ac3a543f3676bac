// Package migrations contains the schema of the relational store. Each
// migration registers itself with pkg/migration from init(); the loader
// imports this package for that side effect.
package migrations
