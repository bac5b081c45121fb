// Package token issues and verifies the three token classes used by the
// auth engine: short-lived access tokens, long-lived refresh tokens, and
// purpose-scoped tokens for email verification and password reset.
//
// Tokens are stateless HS256 JWTs. Access and refresh tokens are signed with
// separate secrets; purpose tokens reuse the access secret under a distinct
// audience so the classes can never be swapped for one another. Every token
// carries a uuid jti claim, which keeps concurrently minted tokens for the
// same subject distinct even within a single signing second.
package token
