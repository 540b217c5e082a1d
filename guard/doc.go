// Package guard decides, for a navigation request, whether the viewer may see the requested area
// and where to send them otherwise. It also resolves each role's landing area.
//
// [Decide] is a pure function of the session snapshot and the query: it performs no I/O and
// never triggers login, logout or refresh.
//
// Two properties always hold:
//
//   - An authenticated viewer is never redirected to login.
//   - An unauthenticated viewer is never sent to a neutral area; they go to login.
package guard
