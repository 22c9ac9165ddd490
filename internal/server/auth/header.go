package auth

import (
	"encoding/base64"
	"strings"
)

// ParseAuthorization extracts the credential from a "<scheme> <credential>"
// header value. The scheme is matched case-insensitively. ok is false for
// any other shape, which callers treat as no credential at all.
func ParseAuthorization(header, scheme string) (credential string, ok bool) {
	got, credential, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(got, scheme) {
		return "", false
	}
	if credential == "" || strings.ContainsAny(credential, " \t") {
		return "", false
	}
	return credential, true
}

// ParseBasic decodes the base64 "user:password" payload of a Basic header.
func ParseBasic(credential string) (username, password string, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(credential)
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(raw), ":")
}

// BasicHeader builds the header value ParseAuthorization and ParseBasic accept.
func BasicHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
