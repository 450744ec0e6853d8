package visibility

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgpub/internal/prompt"
	"imgpub/pkg/github"
)

// fakeAPI serves packages from a path -> visibility map and records calls.
type fakeAPI struct {
	mu       sync.Mutex
	packages map[string]string
	fail     map[string]int
	calls    []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.EscapedPath()
	f.calls = append(f.calls, r.Method+" "+path)

	if code, ok := f.fail[path]; ok {
		w.WriteHeader(code)
		return
	}
	vis, ok := f.packages[path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Package not found."}`)
		return
	}
	switch r.Method {
	case http.MethodGet:
		_, _ = io.WriteString(w, `{"id":1,"name":"x","package_type":"container","visibility":"`+vis+`"}`)
	case http.MethodPatch:
		f.packages[path] = github.VisibilityPublic
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakeAPI) methods(method string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if len(c) > len(method) && c[:len(method)+1] == method+" " {
			out = append(out, c)
		}
	}
	return out
}

func newClient(t *testing.T, api *fakeAPI) *github.Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	c, err := github.NewClient(srv.URL, "ghp_test")
	require.NoError(t, err)
	return c
}

func TestCandidates(t *testing.T) {
	got := Candidates("octo", "octo", "base")
	require.Len(t, got, 3)
	assert.Equal(t, Lookup{Owner: github.Owner{Kind: github.OwnerUser, Login: "octo"}, Name: "base"}, got[0])
	assert.Equal(t, github.OwnerOrg, got[1].Owner.Kind)
	assert.Equal(t, github.OwnerSelf, got[2].Owner.Kind)

	got = Candidates("ml", "ml/images", "rs")
	require.Len(t, got, 6)
	assert.Equal(t, "images/rs", got[0].Name)
	assert.Equal(t, "rs", got[1].Name)
	assert.Equal(t, github.OwnerUser, got[1].Owner.Kind)
	assert.Equal(t, github.OwnerOrg, got[2].Owner.Kind)
}

func TestResolve_FirstFoundWins(t *testing.T) {
	api := &fakeAPI{packages: map[string]string{
		"/orgs/ml/packages/container/images%2Frs": github.VisibilityPrivate,
		"/user/packages/container/rs":             github.VisibilityPublic,
	}}
	c := newClient(t, api)

	res := Resolve(context.Background(), c.Packages, Candidates("ml", "ml/images", "rs"))
	assert.Equal(t, Found, res.Kind)
	assert.Equal(t, github.VisibilityPrivate, res.Visibility)
	assert.Equal(t, github.Owner{Kind: github.OwnerOrg, Login: "ml"}, res.Lookup.Owner)
	assert.Len(t, api.methods("GET"), 3, "stops at the first hit")
}

func TestResolve_NotFoundAndTransient(t *testing.T) {
	api := &fakeAPI{packages: map[string]string{}}
	c := newClient(t, api)
	res := Resolve(context.Background(), c.Packages, Candidates("octo", "octo", "base"))
	assert.Equal(t, NotFound, res.Kind)

	api = &fakeAPI{packages: map[string]string{}, fail: map[string]int{
		"/orgs/octo/packages/container/base": http.StatusBadGateway,
	}}
	c = newClient(t, api)
	res = Resolve(context.Background(), c.Packages, Candidates("octo", "octo", "base"))
	assert.Equal(t, TransientError, res.Kind)
	assert.Error(t, res.Err)
	assert.Len(t, api.methods("GET"), 3, "transient errors do not stop the fold")
}

func TestReconcile_PrivateDeclinedLeavesPackage(t *testing.T) {
	api := &fakeAPI{packages: map[string]string{
		"/users/octo/packages/container/base": github.VisibilityPrivate,
	}}
	r := &Reconciler{Packages: newClient(t, api).Packages, Confirm: prompt.Fixed(false), Owner: "octo", Repo: "octo"}

	rep := r.Reconcile(context.Background(), "base")
	assert.False(t, rep.Changed)
	assert.Equal(t, github.VisibilityPrivate, rep.Visibility)
	assert.Equal(t, "https://github.com/users/octo/packages/container/base/settings", rep.ManualURL)
	assert.Empty(t, api.methods("PATCH"))
	assert.Equal(t, github.VisibilityPrivate, api.packages["/users/octo/packages/container/base"])
}

func TestReconcile_PrivateAcceptedFlips(t *testing.T) {
	api := &fakeAPI{packages: map[string]string{
		"/orgs/ml/packages/container/rs": github.VisibilityPrivate,
	}}
	r := &Reconciler{Packages: newClient(t, api).Packages, Confirm: prompt.Fixed(true), Owner: "ml", Repo: "ml"}

	rep := r.Reconcile(context.Background(), "rs")
	assert.True(t, rep.Changed)
	assert.Equal(t, github.VisibilityPublic, rep.Visibility)
	assert.Equal(t, []string{"PATCH /orgs/ml/packages/container/rs"}, api.methods("PATCH"))
}

func TestReconcile_PatchFailureIsNotFatal(t *testing.T) {
	api := &fakeAPI{
		packages: map[string]string{"/users/octo/packages/container/base": github.VisibilityPrivate},
	}
	c := newClient(t, api)
	r := &Reconciler{Packages: failingPatch{c.Packages}, Confirm: prompt.Fixed(true), Owner: "octo", Repo: "octo"}

	rep := r.Reconcile(context.Background(), "base")
	assert.False(t, rep.Changed)
	assert.NotEmpty(t, rep.ManualURL)
}

func TestReconcile_PublicAndMissing(t *testing.T) {
	api := &fakeAPI{packages: map[string]string{
		"/users/octo/packages/container/base": github.VisibilityPublic,
	}}
	r := &Reconciler{Packages: newClient(t, api).Packages, Confirm: prompt.Fixed(true), Owner: "octo", Repo: "octo"}

	rep := r.Reconcile(context.Background(), "base")
	assert.Equal(t, github.VisibilityPublic, rep.Visibility)
	assert.False(t, rep.Changed)

	rep = r.Reconcile(context.Background(), "rs")
	assert.Equal(t, NotFound, rep.Result.Kind)
	assert.Equal(t, "unknown", rep.Visibility)
	assert.Empty(t, api.methods("PATCH"))
}

func TestSettingsURL(t *testing.T) {
	org := Result{Lookup: Lookup{Owner: github.Owner{Kind: github.OwnerOrg, Login: "ml"}, Name: "images/rs"}}
	assert.Equal(t, "https://github.com/orgs/ml/packages/container/images%2Frs/settings", SettingsURL("ml", org))

	self := Result{Lookup: Lookup{Owner: github.Owner{Kind: github.OwnerSelf}, Name: "base"}}
	assert.Equal(t, "https://github.com/users/octo/packages/container/base/settings", SettingsURL("octo", self))

	assert.Equal(t, "https://github.com/octo?tab=packages", SettingsURL("octo", Result{}))
}

type failingPatch struct {
	github.PackagesService
}

func (failingPatch) SetVisibility(context.Context, github.Owner, string, string) error {
	return &github.APIError{StatusCode: http.StatusUnprocessableEntity, Message: "Unprocessable Entity"}
}
