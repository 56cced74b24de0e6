// Package postgres provides PostgreSQL implementations of the store
// interfaces. Each store maps one table, validates entities before writing,
// translates driver errors into store sentinels, and can be rebound to a
// caller-managed transaction via WithTx. Schema migrations are embedded and
// applied with goose at startup.
package postgres
