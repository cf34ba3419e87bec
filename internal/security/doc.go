// Package security derives a read-only posture report from engine
// configuration. It holds no secrets: key material only contributes
// whether the access and refresh secrets differ.
package security
