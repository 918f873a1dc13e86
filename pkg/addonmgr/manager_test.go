// SPDX-License-Identifier: MPL-2.0

package addonmgr

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/addonproc/addonproc/internal/discovery"
	"github.com/addonproc/addonproc/internal/testutil"
	"github.com/addonproc/addonproc/pkg/addon"
	"github.com/addonproc/addonproc/pkg/host"
	"github.com/addonproc/addonproc/pkg/modpath"
)

type (
	greetOp   struct{ addon.Operator }
	addOp     struct{ addon.Operator }
	mainPanel struct {
		addon.Panel
		category string
	}
	toolsMenu struct{ addon.Menu }
	prefs     struct{ addon.Preferences }
	settings  struct{ addon.PropertyGroup }
	helper    struct{}

	// hookModule records its lifecycle hooks into a shared journal.
	hookModule struct {
		name      string
		classes   []any
		journal   *[]string
		reloadErr error
	}
)

func (p *mainPanel) SetCategory(category string) { p.category = category }

func (h *hookModule) Exports() []any { return h.classes }

func (h *hookModule) Register() error {
	*h.journal = append(*h.journal, "register:"+h.name)
	return nil
}

func (h *hookModule) Unregister() error {
	*h.journal = append(*h.journal, "unregister:"+h.name)
	return nil
}

func (h *hookModule) Reload() error {
	*h.journal = append(*h.journal, "reload:"+h.name)
	return h.reloadErr
}

// newAddon creates an addon folder "hello" containing empty files and
// returns its path.
func newAddon(t *testing.T, files ...string) string {
	t.Helper()
	tree := make(map[string]string, len(files))
	for _, rel := range files {
		tree[rel] = ""
	}
	return testutil.NewAddon(t, "hello", tree)
}

func TestManager_RoundTrip(t *testing.T) {
	t.Parallel()

	var journal []string
	dir := newAddon(t, "operators/greet.go", "operators/sub/add.go", "panels/main.go", "menus/tools.go")
	panel := &mainPanel{}
	catalog := testutil.NewCatalog(t, map[string]addon.Module{
		"hello.operators.greet":   &hookModule{name: "greet", classes: []any{greetOp{}, helper{}}, journal: &journal},
		"hello.operators.sub.add": addon.Classes(addOp{}),
		"hello.panels.main":       &hookModule{name: "main", classes: []any{panel, prefs{}, settings{}}, journal: &journal},
		"hello.menus.tools":       addon.Classes(toolsMenu{}),
	})
	_ = catalog.Markers().SetPriority(toolsMenu{}, 1)

	mem := host.NewMemory()
	table := host.TranslationTable{"ja_JP": {{Context: host.AnyContext, Message: "Hello"}: "こんにちは"}}
	mgr, err := New(context.Background(), Options{
		Root:               dir,
		Targets:            []string{"operators", "panels", "menus"},
		AddonName:          "Hello",
		Category:           "Hello Tools",
		Translations:       table,
		Catalog:            catalog,
		Registry:           mem,
		TranslationService: mem,
		Keymaps:            mem.Keymaps(),
		Properties:         mem.Properties(),
		Logger:             testutil.QuietLogger(),
	})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	wantModules := []string{"hello.operators.greet", "hello.operators.sub.add", "hello.panels.main", "hello.menus.tools"}
	if got := mgr.ModulePaths(); !slices.Equal(got, wantModules) {
		t.Errorf("ModulePaths() = %v, want %v", got, wantModules)
	}
	if mem.Name() != "Hello" {
		t.Errorf("properties name = %q, want %q", mem.Name(), "Hello")
	}
	if panel.category != "Hello Tools" {
		t.Errorf("panel category = %q, want %q", panel.category, "Hello Tools")
	}
	if !modpath.Search.Contains(filepath.Dir(dir)) {
		t.Error("addon parent should be on the search path")
	}

	if err := mgr.Register(context.Background()); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}
	wantClasses := []string{
		"addonmgr.toolsMenu",
		"addonmgr.greetOp",
		"addonmgr.addOp",
		"addonmgr.mainPanel",
		"addonmgr.prefs",
		"addonmgr.settings",
	}
	if got := mem.Registered(); !slices.Equal(got, wantClasses) {
		t.Errorf("Registered() = %v, want %v", got, wantClasses)
	}
	if _, ok := mem.Translations("Hello"); !ok {
		t.Error("translations should be registered under the addon name")
	}

	if err := mgr.Unregister(context.Background()); err != nil {
		t.Fatalf("Unregister() returned error: %v", err)
	}
	if got := mem.Registered(); len(got) != 0 {
		t.Errorf("Registered() after Unregister = %v, want none", got)
	}
	if _, ok := mem.Translations("Hello"); ok {
		t.Error("translations should be unregistered")
	}

	wantJournal := []string{"register:greet", "register:main", "unregister:greet", "unregister:main"}
	if !slices.Equal(journal, wantJournal) {
		t.Errorf("hook journal = %v, want %v", journal, wantJournal)
	}

	var unregisterOrder, tail []string
	for _, c := range mem.Calls() {
		switch c.Op {
		case host.OpUnregisterClass:
			unregisterOrder = append(unregisterOrder, c.Arg)
		case host.OpUnregisterKeymaps, host.OpUnregisterProperties, host.OpUnregisterTranslations:
			tail = append(tail, c.Op)
		}
	}
	if !slices.Equal(unregisterOrder, wantClasses) {
		t.Errorf("unregister order = %v, want %v", unregisterOrder, wantClasses)
	}
	wantTail := []string{host.OpUnregisterKeymaps, host.OpUnregisterProperties, host.OpUnregisterTranslations}
	if !slices.Equal(tail, wantTail) {
		t.Errorf("teardown = %v, want %v", tail, wantTail)
	}
}

func TestManager_PriorityOrder(t *testing.T) {
	t.Parallel()

	type (
		p5    struct{ addon.Operator }
		p1    struct{ addon.Operator }
		unset struct{ addon.Operator }
		p3    struct{ addon.Operator }
	)

	dir := newAddon(t, "operators/ops.go")
	catalog := testutil.NewCatalog(t, map[string]addon.Module{
		"hello.operators.ops": addon.Classes(p5{}, p1{}, unset{}, p3{}),
	})
	markers := catalog.Markers()
	_ = markers.SetPriority(p5{}, 5)
	_ = markers.SetPriority(p1{}, 1)
	_ = markers.SetPriority(p3{}, 3)

	mgr, err := New(context.Background(), Options{
		Root:    dir,
		Targets: []string{"operators"},
		Catalog: catalog,
		Logger:  testutil.QuietLogger(),
	})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	var priorities []int
	for _, c := range mgr.Classes() {
		priorities = append(priorities, c.Priority)
	}
	if want := []int{1, 3, 5, addon.PriorityUnset}; !slices.Equal(priorities, want) {
		t.Errorf("priorities = %v, want %v", priorities, want)
	}
}

func TestManager_ReverseTeardown(t *testing.T) {
	t.Parallel()

	dir := newAddon(t, "operators/ops.go")
	catalog := testutil.NewCatalog(t, map[string]addon.Module{
		"hello.operators.ops": addon.Classes(greetOp{}, addOp{}),
	})
	mem := host.NewMemory()

	mgr, err := New(context.Background(), Options{
		Root:            dir,
		Targets:         []string{"operators"},
		Catalog:         catalog,
		Registry:        mem,
		ReverseTeardown: true,
		Logger:          testutil.QuietLogger(),
	})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if err := mgr.Register(context.Background()); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}
	if err := mgr.Unregister(context.Background()); err != nil {
		t.Fatalf("Unregister() returned error: %v", err)
	}

	var order []string
	for _, c := range mem.Calls() {
		if c.Op == host.OpUnregisterClass {
			order = append(order, c.Arg)
		}
	}
	if want := []string{"addonmgr.addOp", "addonmgr.greetOp"}; !slices.Equal(order, want) {
		t.Errorf("unregister order = %v, want %v", order, want)
	}
}

func TestManager_UnregisterContinuesPastFailures(t *testing.T) {
	t.Parallel()

	dir := newAddon(t, "operators/ops.go")
	catalog := testutil.NewCatalog(t, map[string]addon.Module{
		"hello.operators.ops": addon.Classes(greetOp{}, addOp{}),
	})
	mem := host.NewMemory()

	mgr, err := New(context.Background(), Options{
		Root:     dir,
		Targets:  []string{"operators"},
		Catalog:  catalog,
		Registry: mem,
		Keymaps:  mem.Keymaps(),
		Logger:   testutil.QuietLogger(),
	})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	// Nothing was registered, so both class unregistrations fail.
	err = mgr.Unregister(context.Background())
	if !errors.Is(err, host.ErrNotRegistered) {
		t.Fatalf("Unregister() error = %v, want ErrNotRegistered", err)
	}
	var keymaps bool
	for _, c := range mem.Calls() {
		keymaps = keymaps || c.Op == host.OpUnregisterKeymaps
	}
	if !keymaps {
		t.Error("keymaps should be torn down even when class unregistration fails")
	}
}

func TestManager_TranslationsNeedName(t *testing.T) {
	t.Parallel()

	dir := newAddon(t, "operators/ops.go")
	catalog := testutil.NewCatalog(t, map[string]addon.Module{"hello.operators.ops": addon.Classes(greetOp{})})
	mem := host.NewMemory()

	mgr, err := New(context.Background(), Options{
		Root:               dir,
		Targets:            []string{"operators"},
		Catalog:            catalog,
		Registry:           mem,
		TranslationService: mem,
		Translations:       host.TranslationTable{"ja_JP": {{Context: "*", Message: "A"}: "a"}},
		Logger:             testutil.QuietLogger(),
	})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if err := mgr.Register(context.Background()); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}
	for _, c := range mem.Calls() {
		if c.Op == host.OpRegisterTranslations {
			t.Error("translations must not be registered without an addon name")
		}
	}
}

func TestManager_DebugReload(t *testing.T) {
	t.Parallel()

	dir := newAddon(t, "operators/ops.go")

	t.Run("reloads with a host", func(t *testing.T) {
		t.Parallel()

		var journal []string
		catalog := testutil.NewCatalog(t, map[string]addon.Module{
			"hello.operators.ops": &hookModule{name: "ops", journal: &journal},
		})
		_, err := New(context.Background(), Options{
			Root: dir, Targets: []string{"operators"}, Catalog: catalog,
			Debug: true, Registry: host.NewMemory(), Logger: testutil.QuietLogger(),
		})
		if err != nil {
			t.Fatalf("New() returned error: %v", err)
		}
		if !slices.Equal(journal, []string{"reload:ops"}) {
			t.Errorf("journal = %v, want one reload", journal)
		}
	})

	t.Run("skipped without a host", func(t *testing.T) {
		t.Parallel()

		var journal []string
		catalog := testutil.NewCatalog(t, map[string]addon.Module{
			"hello.operators.ops": &hookModule{name: "ops", journal: &journal},
		})
		mgr, err := New(context.Background(), Options{
			Root: dir, Targets: []string{"operators"}, Catalog: catalog,
			Debug: true, Logger: testutil.QuietLogger(),
		})
		if err != nil {
			t.Fatalf("New() returned error: %v", err)
		}
		if len(journal) != 0 {
			t.Errorf("journal = %v, want no reload", journal)
		}
		if err := mgr.Reload(context.Background()); !errors.Is(err, ErrNoHost) {
			t.Errorf("Reload() error = %v, want ErrNoHost", err)
		}
		if err := mgr.Register(context.Background()); !errors.Is(err, ErrNoHost) {
			t.Errorf("Register() error = %v, want ErrNoHost", err)
		}
	})

	t.Run("reload failure fails construction", func(t *testing.T) {
		t.Parallel()

		var journal []string
		reloadErr := errors.New("stale")
		catalog := testutil.NewCatalog(t, map[string]addon.Module{
			"hello.operators.ops": &hookModule{name: "ops", journal: &journal, reloadErr: reloadErr},
		})
		_, err := New(context.Background(), Options{
			Root: dir, Targets: []string{"operators"}, Catalog: catalog,
			Debug: true, Registry: host.NewMemory(), Logger: testutil.QuietLogger(),
		})
		var hookErr *HookError
		if !errors.As(err, &hookErr) || hookErr.Hook != "reload" || !errors.Is(err, reloadErr) {
			t.Errorf("New() error = %v, want reload HookError", err)
		}
	})
}

func TestManager_Diagnostics(t *testing.T) {
	t.Parallel()

	dir := newAddon(t, "operators/linked.go", "operators/orphan.go")
	catalog := testutil.NewCatalog(t, map[string]addon.Module{"hello.operators.linked": addon.Classes(greetOp{})})

	mgr, err := New(context.Background(), Options{
		Root: dir, Targets: []string{"operators"}, Catalog: catalog, Logger: testutil.QuietLogger(),
	})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	diags := mgr.Diagnostics()
	if len(diags) != 1 || diags[0].Code != discovery.CodeModuleNotLinked || diags[0].Path != "hello.operators.orphan" {
		t.Errorf("Diagnostics() = %v", diags)
	}

	_, err = New(context.Background(), Options{
		Root: dir, Targets: []string{"operators"}, Catalog: catalog, Strict: true, Logger: testutil.QuietLogger(),
	})
	if !errors.Is(err, addon.ErrModuleNotLinked) {
		t.Errorf("strict New() error = %v, want ErrModuleNotLinked", err)
	}
}

func TestManager_ConstructionErrors(t *testing.T) {
	t.Parallel()

	dir := newAddon(t, "operators/ops.go")

	if _, err := New(context.Background(), Options{Root: dir, Targets: []string{"panels"}, Catalog: addon.NewCatalog()}); !errors.Is(err, discovery.ErrNotADirectory) {
		t.Errorf("missing target error = %v, want ErrNotADirectory", err)
	}
	if _, err := New(context.Background(), Options{Root: filepath.Join(dir, "nope"), Catalog: addon.NewCatalog()}); !errors.Is(err, modpath.ErrInvalidRoot) {
		t.Errorf("missing root error = %v, want ErrInvalidRoot", err)
	}
}

func TestManager_RootMayBeAFile(t *testing.T) {
	t.Parallel()

	dir := newAddon(t, "__init__.go", "operators/ops.go")
	catalog := testutil.NewCatalog(t, map[string]addon.Module{"hello.operators.ops": addon.Classes(greetOp{})})

	mgr, err := New(context.Background(), Options{
		Root: filepath.Join(dir, "__init__.go"), Targets: []string{"operators"}, Catalog: catalog, Logger: testutil.QuietLogger(),
	})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if mgr.Root().DirName != "hello" {
		t.Errorf("Root().DirName = %q, want %q", mgr.Root().DirName, "hello")
	}
	if got := mgr.ModulePaths(); !slices.Equal(got, []string{"hello.operators.ops"}) {
		t.Errorf("ModulePaths() = %v", got)
	}
}

func TestManager_Spans(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	dir := newAddon(t, "operators/ops.go")
	catalog := testutil.NewCatalog(t, map[string]addon.Module{"hello.operators.ops": addon.Classes(greetOp{})})

	mgr, err := New(context.Background(), Options{
		Root: dir, Targets: []string{"operators"}, Catalog: catalog,
		Registry: host.NewMemory(), TracerProvider: provider, Logger: testutil.QuietLogger(),
	})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	_ = mgr.Register(context.Background())
	_ = mgr.Unregister(context.Background())

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	want := []string{"addonmgr.discover", "addonmgr.register", "addonmgr.unregister"}
	if !slices.Equal(names, want) {
		t.Errorf("spans = %v, want %v", names, want)
	}
}
