package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// PackagesService covers container package metadata.
type PackagesService interface {
	Get(ctx context.Context, owner Owner, name string) (Package, error)
	SetVisibility(ctx context.Context, owner Owner, name, visibility string) error
}

type packagesService struct {
	client *Client
}

// packagePath builds the container package endpoint. name may contain "/"
// (e.g. "octo/base") and is escaped as one path segment.
func packagePath(owner Owner, name string) string {
	pkg := url.PathEscape(name)
	if owner.Kind == OwnerSelf {
		return "/user/packages/container/" + pkg
	}
	return fmt.Sprintf("/%s/%s/packages/container/%s", owner.Kind, url.PathEscape(owner.Login), pkg)
}

// Get fetches one container package.
func (s *packagesService) Get(ctx context.Context, owner Owner, name string) (Package, error) {
	respData, err := s.client.DoRequest(ctx, "GET", packagePath(owner, name), nil)
	if err != nil {
		return Package{}, fmt.Errorf("get package %s (%s): %w", name, owner, err)
	}
	var p Package
	if err := json.Unmarshal(respData, &p); err != nil {
		return Package{}, fmt.Errorf("get package %s: unmarshal: %w", name, err)
	}
	return p, nil
}

// SetVisibility PATCHes the package's visibility.
func (s *packagesService) SetVisibility(ctx context.Context, owner Owner, name, visibility string) error {
	payload := map[string]string{"visibility": visibility}
	if _, err := s.client.DoRequest(ctx, "PATCH", packagePath(owner, name), payload); err != nil {
		return fmt.Errorf("set visibility of %s (%s) to %s: %w", name, owner, visibility, err)
	}
	return nil
}
