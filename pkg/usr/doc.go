/*
Package usr implements named users with P-256 key pairs.

A user signs the canonical bytes of a unit (ECDSA over SHA-256 of the
payload, raw r‖s, base64) and hashes them with SHA3-256. Public keys
travel as base64 SEC1 compressed points. A user built without a
private key (Guest) verifies but cannot sign.

Key generation draws 32 bytes from the entropy driver, so a stub
driver makes identities reproducible in tests.
*/
package usr
