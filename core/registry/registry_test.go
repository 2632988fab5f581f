package registry

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/artpar/agencms/core/schema"
)

func makeRoute(t *testing.T, slug string, groups ...string) schema.Route {
	t.Helper()

	r, err := schema.InitRoute(slug, schema.Title(strings.ToUpper(slug[:1])+slug[1:]), schema.Path(slug), "")
	if err != nil {
		t.Fatalf("InitRoute(%s) error = %v", slug, err)
	}
	for _, name := range groups {
		r = r.AddGroup(schema.FullGroup(name))
	}
	return r
}

func groupNames(groups []schema.GroupSpec) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return names
}

func TestNew(t *testing.T) {
	r := New()
	if r == nil {
		t.Fatal("New() returned nil")
	}
	if r.RouteCount() != 0 || r.PluginCount() != 0 {
		t.Error("new registry should be empty")
	}
}

func TestRegistry_RegisterRoute(t *testing.T) {
	r := New()

	if err := r.RegisterRoute(makeRoute(t, "pages")); err != nil {
		t.Fatalf("RegisterRoute() error = %v", err)
	}

	spec, ok := r.Route("pages")
	if !ok {
		t.Fatal("Route() should find registered route")
	}
	if spec.Name != "Pages" {
		t.Errorf("Name = %s, want Pages", spec.Name)
	}
}

func TestRegistry_RegisterRouteOverwrites(t *testing.T) {
	r := New()
	_ = r.RegisterRoute(makeRoute(t, "pages", "A"))
	_ = r.RegisterRoute(makeRoute(t, "posts"))
	_ = r.RegisterRoute(makeRoute(t, "pages", "B"))

	spec, _ := r.Route("pages")
	if got := groupNames(spec.Groups); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("groups = %v, want [B]", got)
	}
	if keys := r.Routes().Keys(); !reflect.DeepEqual(keys, []string{"pages", "posts"}) {
		t.Errorf("order = %v, want [pages posts]", keys)
	}
}

func TestRegistry_RegisterRouteRejectsCarrier(t *testing.T) {
	r := New()
	_ = r.RegisterRoute(makeRoute(t, "settings", "A"))

	err := r.RegisterRoute(schema.LoadRoute("settings"))
	if !errors.Is(err, ErrMergeCarrier) {
		t.Fatalf("error = %v, want ErrMergeCarrier", err)
	}

	spec, _ := r.Route("settings")
	if spec.Name != "Settings" || len(spec.Groups) != 1 {
		t.Error("carrier registration modified the existing route")
	}
}

func TestRegistry_RegisterRouteRejectsZeroRoute(t *testing.T) {
	err := New().RegisterRoute(schema.Route{})
	if !errors.Is(err, schema.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestRegistry_AppendRoute(t *testing.T) {
	r := New()
	_ = r.RegisterRoute(makeRoute(t, "settings", "A").Icon("settings"))

	merged, err := r.AppendRoute(schema.LoadRoute("settings").AddGroup(schema.FullGroup("B")))
	if err != nil {
		t.Fatalf("AppendRoute() error = %v", err)
	}
	if got := groupNames(merged); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("merged = %v, want [A B]", got)
	}

	spec, _ := r.Route("settings")
	if got := groupNames(spec.Groups); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("stored groups = %v, want [A B]", got)
	}
	if spec.Name != "Settings" || spec.Icon != "settings" || len(spec.Endpoints) != 4 {
		t.Errorf("append changed other attributes: %+v", spec)
	}
}

func TestRegistry_AppendRouteMissingSlug(t *testing.T) {
	r := New()
	_ = r.RegisterRoute(makeRoute(t, "settings", "A"))
	before := r.All()

	merged, err := r.AppendRoute(schema.LoadRoute("missing").AddGroup(schema.FullGroup("B")))
	if err == nil {
		t.Fatal("AppendRoute() should fail for an unknown slug")
	}
	if merged != nil {
		t.Errorf("merged = %v, want nil", merged)
	}
	if !errors.Is(err, ErrRouteNotFound) {
		t.Errorf("error = %v, want ErrRouteNotFound", err)
	}

	var notFound *RouteNotFoundError
	if !errors.As(err, &notFound) || notFound.Slug != "missing" {
		t.Errorf("error = %#v, want RouteNotFoundError{missing}", err)
	}
	if err.Error() != "Route missing not found" {
		t.Errorf("Error() = %q", err.Error())
	}

	if !sameDocument(t, before, r.All()) {
		t.Error("failed append modified the registry")
	}
	if r.HasRoute("missing") {
		t.Error("failed append inserted the route")
	}
}

func TestRegistry_AppendRouteResultIsCopy(t *testing.T) {
	r := New()
	_ = r.RegisterRoute(makeRoute(t, "settings", "A"))

	merged, _ := r.AppendRoute(schema.LoadRoute("settings").AddGroup(schema.FullGroup("B")))
	merged[0].Name = "changed"

	spec, _ := r.Route("settings")
	if spec.Groups[0].Name != "A" {
		t.Error("returned groups share storage with the registry")
	}
}

func TestRegistry_RegisterPlugin(t *testing.T) {
	r := New()

	if !r.RegisterPlugin("agencms.core") {
		t.Error("first registration should report a new plugin")
	}
	if r.RegisterPlugin("agencms.core") {
		t.Error("second registration should report an existing plugin")
	}
	r.RegisterPlugin("agencms.blog")

	want := []string{"agencms.blog", "agencms.core"}
	if got := r.Plugins(); !reflect.DeepEqual(got, want) {
		t.Errorf("Plugins() = %v, want %v", got, want)
	}
}

func TestRegistry_AllIsIdempotent(t *testing.T) {
	r := New()
	_ = r.RegisterRoute(makeRoute(t, "pages", "A"))
	_ = r.RegisterRoute(makeRoute(t, "posts", "B"))

	first := r.All()
	second := r.All()
	if !sameDocument(t, first, second) {
		t.Error("All() returned different snapshots")
	}
}

// sameDocument compares snapshots by their served JSON, which carries the
// route and field order.
func sameDocument(t *testing.T, a, b Snapshot) bool {
	t.Helper()

	da, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	db, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	return string(da) == string(db)
}

func TestRegistry_AllIsIsolated(t *testing.T) {
	r := New()
	_ = r.RegisterRoute(makeRoute(t, "pages", "A"))

	snap := r.All()
	spec, _ := snap.Routes.Get("pages")
	spec.Groups[0].Name = "changed"
	snap.Routes.Delete("pages")

	if !r.HasRoute("pages") {
		t.Error("deleting from a snapshot reached the registry")
	}
	stored, _ := r.Route("pages")
	if stored.Groups[0].Name != "A" {
		t.Error("snapshot shares groups with the registry")
	}
}

func TestRegistry_AllJSON(t *testing.T) {
	r := New()
	_ = r.RegisterRoute(makeRoute(t, "pages"))

	data, err := json.Marshal(r.All())
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}

	var doc struct {
		Routes map[string]struct {
			Slug      string            `json:"slug"`
			Endpoints map[string]string `json:"endpoints"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if doc.Routes["pages"].Endpoints["DELETE"] != "pages" {
		t.Errorf("document = %s", data)
	}
}

func TestRegistry_Clone(t *testing.T) {
	r := New()
	_ = r.RegisterRoute(makeRoute(t, "settings", "A"))
	r.RegisterPlugin("agencms.core")

	c := r.Clone()
	_, _ = c.AppendRoute(schema.LoadRoute("settings").AddGroup(schema.FullGroup("B")))
	_ = c.RegisterRoute(makeRoute(t, "pages"))
	c.RegisterPlugin("agencms.blog")

	spec, _ := r.Route("settings")
	if len(spec.Groups) != 1 {
		t.Error("append on clone reached the original")
	}
	if r.HasRoute("pages") || r.PluginCount() != 1 {
		t.Error("registration on clone reached the original")
	}
	if c.RouteCount() != 2 || c.PluginCount() != 2 {
		t.Errorf("clone counts = %d/%d, want 2/2", c.RouteCount(), c.PluginCount())
	}
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	r := New()
	_ = r.RegisterRoute(makeRoute(t, "pages", "A"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := r.Clone()
			_, _ = c.AppendRoute(schema.LoadRoute("pages").AddGroup(schema.FullGroup("B")))
			_ = r.All()
		}()
	}
	wg.Wait()

	spec, _ := r.Route("pages")
	if len(spec.Groups) != 1 {
		t.Errorf("groups = %d, want 1", len(spec.Groups))
	}
}
