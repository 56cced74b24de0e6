// Package domain contains the core entities of the EduPlay API: parent
// accounts, child profiles, the subscription record, per-activity learning
// progress, and the achievement catalog and state. Entities validate
// themselves and expose sentinel errors; all behavior over them lives in the
// entitlement, progress, and achievement engine subpackages.
package domain
