package github

import "fmt"

// OwnerKind selects which packages endpoint family a lookup goes through.
type OwnerKind string

const (
	// OwnerSelf is the authenticated user: /user/packages/...
	OwnerSelf OwnerKind = "user"
	// OwnerUser is a named user: /users/{login}/packages/...
	OwnerUser OwnerKind = "users"
	// OwnerOrg is an organization: /orgs/{login}/packages/...
	OwnerOrg OwnerKind = "orgs"
)

// Owner identifies a package owner endpoint.
type Owner struct {
	Kind  OwnerKind
	Login string // ignored for OwnerSelf
}

func (o Owner) String() string {
	if o.Kind == OwnerSelf {
		return "user"
	}
	return fmt.Sprintf("%s/%s", o.Kind, o.Login)
}

const (
	VisibilityPublic   = "public"
	VisibilityPrivate  = "private"
	VisibilityInternal = "internal"
)

// Package is the subset of the packages API response this tool reads.
type Package struct {
	ID         int64         `json:"id"`
	Name       string        `json:"name"`
	Type       string        `json:"package_type"`
	Visibility string        `json:"visibility"`
	HTMLURL    string        `json:"html_url,omitempty"`
	Owner      *PackageOwner `json:"owner,omitempty"`
}

type PackageOwner struct {
	Login string `json:"login"`
	Type  string `json:"type"` // "User" or "Organization"
}

// User is the subset of /user and /users/{login} responses used here.
type User struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}
