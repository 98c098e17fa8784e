package robopages

import (
	"reflect"
	"runtime"
	"strings"
	"testing"
)

const nmapPage = `
description: Network scanning with nmap.
functions:
  - name: nmap_tcp_scan
    description: Scan TCP ports on a target host.
    parameters:
      - name: target
        type: string
        description: Host or CIDR range to scan.
      - name: ports
        type: string
        description: Port list.
        required: false
        default: "1-1024"
    cmdline: [nmap, -p, "${ports}", "${target}"]
  - name: nmap_ping_sweep
    description: Ping sweep a network range.
    parameters:
      - name: range
        type: string
        description: CIDR range.
    cmdline: [nmap, -sn, "${range}"]
`

func TestParsePage(t *testing.T) {
	page, err := ParsePage([]byte(nmapPage))
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}

	if got := len(page.Functions); got != 2 {
		t.Fatalf("len(Functions) = %d, want 2", got)
	}
	if got := page.Functions[0].Name; got != "nmap_tcp_scan" {
		t.Errorf("Functions[0].Name = %q, want nmap_tcp_scan", got)
	}
	if got := page.Functions[1].Name; got != "nmap_ping_sweep" {
		t.Errorf("Functions[1].Name = %q, want nmap_ping_sweep", got)
	}

	fn := page.Function("nmap_tcp_scan")
	if fn == nil {
		t.Fatal("Function(nmap_tcp_scan) = nil")
	}
	if got := fn.Parameters[0].Name; got != "target" {
		t.Errorf("Parameters[0].Name = %q, want target", got)
	}
	if !fn.Parameters[0].Required {
		t.Error("Parameters[0].Required = false, want true by default")
	}
	if fn.Parameters[1].Required {
		t.Error("Parameters[1].Required = true, want false")
	}
	if got := fn.Parameters[1].Default; got != "1-1024" {
		t.Errorf("Parameters[1].Default = %q, want 1-1024", got)
	}
}

func TestParsePageErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "not yaml",
			yaml: "{{{",
			want: "",
		},
		{
			name: "no functions",
			yaml: "description: empty page\n",
			want: "no functions",
		},
		{
			name: "duplicate function",
			yaml: `
functions:
  - name: ping
    cmdline: [ping]
  - name: ping
    cmdline: [ping]
`,
			want: "defined twice",
		},
		{
			name: "no command line",
			yaml: `
functions:
  - name: ghost
    description: nothing to run
`,
			want: "no command line",
		},
		{
			name: "duplicate parameter",
			yaml: `
functions:
  - name: ping
    parameters:
      - name: target
        type: string
      - name: target
        type: string
    cmdline: [ping, "${target}"]
`,
			want: "twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePage([]byte(tt.yaml))
			if err == nil {
				t.Fatal("ParsePage() error = nil, want error")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestFunctionCommandLine(t *testing.T) {
	page, err := ParsePage([]byte(nmapPage))
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}
	fn := page.Function("nmap_tcp_scan")

	got, err := fn.CommandLine(map[string]string{"target": "10.0.0.1", "ports": "80,443"})
	if err != nil {
		t.Fatalf("CommandLine() error = %v", err)
	}
	want := []string{"nmap", "-p", "80,443", "10.0.0.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CommandLine() = %v, want %v", got, want)
	}
}

func TestFunctionCommandLineDefaults(t *testing.T) {
	page, err := ParsePage([]byte(nmapPage))
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}
	fn := page.Function("nmap_tcp_scan")

	got, err := fn.CommandLine(map[string]string{"target": "10.0.0.1"})
	if err != nil {
		t.Fatalf("CommandLine() error = %v", err)
	}
	want := []string{"nmap", "-p", "1-1024", "10.0.0.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CommandLine() = %v, want %v", got, want)
	}
}

func TestFunctionCommandLineIgnoresUnknownArguments(t *testing.T) {
	page, err := ParsePage([]byte(nmapPage))
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}
	fn := page.Function("nmap_ping_sweep")

	got, err := fn.CommandLine(map[string]string{"range": "10.0.0.0/24", "verbose": "yes"})
	if err != nil {
		t.Fatalf("CommandLine() error = %v", err)
	}
	want := []string{"nmap", "-sn", "10.0.0.0/24"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CommandLine() = %v, want %v", got, want)
	}
}

func TestFunctionTemplatePlatforms(t *testing.T) {
	doc := `
functions:
  - name: list_dir
    description: List a directory.
    parameters:
      - name: dir
        type: string
        description: Directory to list.
    platforms:
      ` + runtime.GOOS + `: [ls, "${dir}"]
`
	page, err := ParsePage([]byte(doc))
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}

	got, err := page.Function("list_dir").CommandLine(map[string]string{"dir": "/tmp"})
	if err != nil {
		t.Fatalf("CommandLine() error = %v", err)
	}
	want := []string{"ls", "/tmp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CommandLine() = %v, want %v", got, want)
	}
}

func TestFunctionTemplateMissingPlatform(t *testing.T) {
	doc := `
functions:
  - name: only_elsewhere
    description: Defined for another platform only.
    platforms:
      definitely_not_this_goos: [run]
`
	page, err := ParsePage([]byte(doc))
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}

	if _, err := page.Function("only_elsewhere").Template(); err == nil {
		t.Error("Template() error = nil, want error for missing platform")
	}
}

func TestFunctionSignature(t *testing.T) {
	page, err := ParsePage([]byte(nmapPage))
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}

	got := page.Function("nmap_tcp_scan").Signature()
	want := "nmap_tcp_scan(target:string, ports:string)"
	if got != want {
		t.Errorf("Signature() = %q, want %q", got, want)
	}
}

func TestPageLabel(t *testing.T) {
	page := &Page{Name: "nikto", Categories: []string{"web", "scanners"}}
	if got, want := page.Label(), "web > scanners > nikto"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}

	bare := &Page{Name: "nikto"}
	if got := bare.Label(); got != "nikto" {
		t.Errorf("Label() = %q, want nikto", got)
	}
}
