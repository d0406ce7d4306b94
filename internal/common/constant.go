// Package common contains shared constants and the error taxonomy used across
// booklib components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// DefaultCoverImage is substituted when a book has no usable cover URL.
const DefaultCoverImage = "https://placehold.co/300x400?text=No+Cover+Image"

// MinPasswordLength is counted in characters (runes).
const MinPasswordLength = 6

// MaxPasswordBytes is the bcrypt input limit.
const MaxPasswordBytes = 72
