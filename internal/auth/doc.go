// ABOUTME: Package doc for authentication and account lifecycle
// ABOUTME: Covers JWT access tokens, bcrypt passwords, and refresh rotation

// Package auth implements account registration, login, and request
// authentication.
//
// Access tokens are short-lived HS256 JWTs carrying the user ID in "sub"
// and the account role in "role"; they are verified statelessly on every
// request by HTTPAuthMiddleware, which attaches an AuthContext to the
// request context. Refresh tokens are opaque, stored server-side, and
// rotate on every use.
package auth
