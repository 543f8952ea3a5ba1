// Package response writes the JSON envelope used by every API endpoint:
// {"data": ...} on success and {"error": {"code", "message", "details"}}
// on failure.
package response
