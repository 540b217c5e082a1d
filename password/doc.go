// Package password hashes and verifies the seeded account passwords held by the fake auth
// gateway.
//
// Hashes use the PHC string format with unpadded base64 salt and key:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The package never stores passwords and never logs plaintext or hash parameters.
package password
