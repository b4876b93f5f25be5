// Package auth implements the authentication subsystem: bcrypt password
// hashing, signed bearer-token issuance and verification, the account
// service orchestrating them, and the HTTP middleware gating protected
// endpoints.
//
// Token validity is a dual check, performed by two independent pieces:
// the TokenCodec verifies the signature cryptographically, and the
// AccountStore confirms the token is still present in the account's token
// list. The list is authoritative: removing an entry revokes exactly that
// token, even though its signature would still verify.
package auth
