// Package fs abstracts the file operations of blobstore.LocalStore so that
// tests can inject I/O failures.
//
//   - [LocalFS]: the os package
//   - [FaultyFS]: wraps another FileSystem and fails writes, syncs, closes
//     or renames on request
//
// Operations take no context.Context. Local file operations are not
// interruptible at the syscall level; blobstore carries the context.
package fs
