package runner

import (
	"path/filepath"
	"testing"
)

func TestCatalogInvariants(t *testing.T) {
	seen := make(map[string]struct{})
	for _, tool := range Catalog {
		if tool.ID == "" || tool.Label == "" {
			t.Errorf("tool %+v missing id or label", tool)
		}
		if _, dup := seen[tool.ID]; dup {
			t.Errorf("duplicate tool id %q", tool.ID)
		}
		seen[tool.ID] = struct{}{}
		if !filepath.IsAbs(tool.Path) {
			t.Errorf("tool %q path %q is not absolute", tool.ID, tool.Path)
		}
	}
}

func TestToolByID(t *testing.T) {
	tool, ok := ToolByID("list-root")
	if !ok {
		t.Fatal("list-root not in catalog")
	}
	if tool.Path != "/bin/ls" {
		t.Errorf("Path = %q, want /bin/ls", tool.Path)
	}
	if len(tool.Args) != 2 || tool.Args[0] != "-la" || tool.Args[1] != "/" {
		t.Errorf("Args = %v, want [-la /]", tool.Args)
	}

	if _, ok := ToolByID("definitely-not-a-tool"); ok {
		t.Error("lookup of unknown id succeeded")
	}
}

func TestToolArgv(t *testing.T) {
	tool := Tool{ID: "x", Label: "X", Path: "/bin/true", Args: []string{"-a", "-b"}}
	argv := tool.Argv()
	want := []string{"/bin/true", "-a", "-b"}
	if len(argv) != len(want) {
		t.Fatalf("Argv() = %v, want %v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Fatalf("Argv() = %v, want %v", argv, want)
		}
	}
}
