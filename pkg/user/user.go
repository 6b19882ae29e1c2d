package user

import "strings"

// User is the caller identity as asserted by the authenticating gateway in front of the service.
type User struct {
	Id string
}

const HeaderUserId = "X-User-Id"

// FromHeader builds a User from the raw X-User-Id header value. ok is false for blank values.
func FromHeader(value string) (User, bool) {
	id := strings.TrimSpace(value)
	if id == "" {
		return User{}, false
	}
	return User{Id: id}, true
}
