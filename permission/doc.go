// Package permission holds the client-side role gate applied to the user
// record returned by a successful login.
//
// The backend authenticates any account; this client only keeps sessions for
// accounts that pass a [Gate]. The default [TeacherGate] accepts a truthy
// is_teacher flag or a role_name mentioning "teacher" / "giáo viên".
//
// # What this package must NOT do
//
//   - Perform I/O or touch the credential store.
//   - Replace server-side authorization; the gate only decides what this client keeps.
package permission
