// Package policy scores candidate passwords against the structural strength
// rules enforced at registration and password reset.
//
// Evaluation is pure: no I/O, no clock, no configuration. The same input
// always produces the same [Report], and there are no error cases.
//
// # Architecture boundaries
//
// policy owns rule evaluation only. Whether a failed report rejects a
// request is the Engine's decision; policy never returns errors and never
// sees stored credentials.
//
// # What this package must NOT do
//
//   - Import any other authcore package.
//   - Log or retain the password it evaluates.
//   - Perform network or storage access.
package policy
