package runner

// Tool is one entry in the fixed demo catalog: an absolute executable path
// and the exact argument vector to pass it. There is deliberately no way to
// feed user input into Args.
type Tool struct {
	ID    string
	Label string
	Path  string
	Args  []string
}

// Argv renders the invocation for display.
func (t Tool) Argv() []string {
	return append([]string{t.Path}, t.Args...)
}

// Catalog is the hardcoded set of demo invocations surfaced as buttons.
// Entries are not user-configurable and are never routed through a shell.
var Catalog = []Tool{
	{
		ID:    "list-root",
		Label: "List root directory",
		Path:  "/bin/ls",
		Args:  []string{"-la", "/"},
	},
	{
		ID:    "git-status",
		Label: "Git status",
		Path:  "/usr/bin/git",
		Args:  []string{"status"},
	},
	{
		ID:    "disk-free",
		Label: "Disk usage",
		Path:  "/bin/df",
		Args:  []string{"-h"},
	},
	{
		ID:    "kernel",
		Label: "Kernel version",
		Path:  "/bin/uname",
		Args:  []string{"-a"},
	},
}

// ToolByID looks up a catalog entry.
func ToolByID(id string) (Tool, bool) {
	for _, t := range Catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Tool{}, false
}
