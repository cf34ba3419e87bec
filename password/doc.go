// Package password hashes and verifies passwords with Argon2id.
//
// Hashes are PHC strings with unpadded base64 segments:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<key>
//
// Verification reads the cost parameters from the stored hash, so hashes made
// with older settings keep verifying; [Argon2.NeedsUpgrade] flags them for a
// rehash on the next successful login. Minimum length is enforced by request
// validation, not here.
package password
