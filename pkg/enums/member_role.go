package enums

import (
	"fmt"
	"strings"
)

// MemberRole is the role claim carried on access tokens.
type MemberRole string

const (
	MemberRoleUser  MemberRole = "user"
	MemberRoleAdmin MemberRole = "admin"
)

// memberRoleRank orders roles by privilege; a higher rank satisfies any
// lower requirement.
var memberRoleRank = map[MemberRole]int{
	MemberRoleUser:  1,
	MemberRoleAdmin: 2,
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

func (m MemberRole) IsValid() bool {
	_, ok := memberRoleRank[m]
	return ok
}

// Allows reports whether m may act on routes that require role required.
func (m MemberRole) Allows(required MemberRole) bool {
	have, ok := memberRoleRank[m]
	if !ok {
		return false
	}
	return have >= memberRoleRank[required]
}

// ParseMemberRole accepts any casing; token issuers are not consistent.
func ParseMemberRole(value string) (MemberRole, error) {
	role := MemberRole(strings.ToLower(strings.TrimSpace(value)))
	if !role.IsValid() {
		return "", fmt.Errorf("invalid member role %q", value)
	}
	return role, nil
}
