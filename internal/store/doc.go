// Package store provides abstractions for data persistence: one interface
// per entity, shared sentinel errors, and transaction helpers. Concrete
// implementations live in internal/platform/postgres.
package store
