// Package api contains the HTTP handlers for the public API surface:
// authentication, child profile management, subscription lifecycle, activity
// progress recording, and achievements. Handlers decode and validate request
// payloads, delegate to the service layer, and translate service errors into
// sanitized HTTP responses.
package api
