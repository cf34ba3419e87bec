// Package jwt issues and verifies the HS256 access and refresh tokens handed
// out on login. Access and refresh tokens carry the same claims but are
// signed with distinct secrets.
package jwt
