// Package testutil provides helpers shared by spanruler tests.
//
// Key components:
//   - TestEnvironment: points the XDG directories at a temp dir so config
//     lookup and the log file never touch the real home
//   - CreateFile / ReadFile / FileExists: terse file fixtures
//   - Doc: a tokenized document for matcher and renderer tests
package testutil
