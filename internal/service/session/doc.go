// Package session manages the signed-in identity of the application.
//
// It forwards credential operations to the identity provider, keeps the latest
// session, persists its refresh token so it can be restored on the next start,
// and notifies subscribers about every sign-in and sign-out.
package session
