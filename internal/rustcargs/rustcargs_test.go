package rustcargs

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	args := []string{
		"--crate-name", "mytool",
		"--edition=2021",
		"src/main.rs",
		"--crate-type", "bin",
		"--emit=dep-info,link",
		"--cfg", `feature="default"`,
		"--cfg", `feature="serde"`,
		"--cfg", "unix",
		"--out-dir", "/tmp/out",
		"--target=x86_64-unknown-linux-gnu",
	}
	got := Parse(args)
	want := Args{
		CrateName:  "mytool",
		CrateTypes: []string{"bin"},
		Cfg:        []string{`feature="default"`, `feature="serde"`, "unix"},
		Emit:       []string{"dep-info", "link"},
		OutDir:     "/tmp/out",
		Target:     "x86_64-unknown-linux-gnu",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseCodegenOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		key  string
		want string
		ok   bool
	}{
		{name: "space separated", args: []string{"-C", "linker-flavor=ld"}, key: "linker-flavor", want: "ld", ok: true},
		{name: "glued", args: []string{"-Clinker-flavor=ld.lld"}, key: "linker-flavor", want: "ld.lld", ok: true},
		{name: "boolean option with no value", args: []string{"-Cprefer-dynamic"}, key: "prefer-dynamic", want: "", ok: true},
		{name: "absent", args: []string{"--crate-name", "foo"}, key: "linker-flavor", want: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.args).CodegenOption(tt.key)
			if got != tt.want || ok != tt.ok {
				t.Errorf("CodegenOption(%q) = (%q, %v), want (%q, %v)", tt.key, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseMultipleCrateTypes(t *testing.T) {
	got := Parse([]string{"--crate-type", "lib,cdylib,staticlib"})
	want := []string{"lib", "cdylib", "staticlib"}
	if !reflect.DeepEqual(got.CrateTypes, want) {
		t.Fatalf("CrateTypes = %v, want %v", got.CrateTypes, want)
	}
}

func TestParseTrailingFlagWithoutValueIgnored(t *testing.T) {
	got := Parse([]string{"--crate-name"})
	if got.CrateName != "" {
		t.Fatalf("CrateName = %q, want empty", got.CrateName)
	}
}

func TestEnabledFeatures(t *testing.T) {
	a := Args{Cfg: []string{
		`feature="default"`,
		`feature="serde"`,
		"unix",
		"debug_assertions",
		`panic="unwind"`,
	}}
	got := a.EnabledFeatures()
	want := []string{"default", "serde"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EnabledFeatures() = %v, want %v", got, want)
	}
}

func TestShouldInject(t *testing.T) {
	tests := []struct {
		name string
		args Args
		want bool
	}{
		{
			name: "bin with link emit",
			args: Args{CrateName: "foo", CrateTypes: []string{"bin"}, Emit: []string{"link"}},
			want: true,
		},
		{
			name: "bin with no explicit emit",
			args: Args{CrateName: "foo", CrateTypes: []string{"bin"}},
			want: true,
		},
		{
			name: "cdylib with link emit",
			args: Args{CrateName: "foo", CrateTypes: []string{"cdylib"}, Emit: []string{"link"}},
			want: true,
		},
		{
			name: "lib crate type not injected",
			args: Args{CrateName: "foo", CrateTypes: []string{"lib"}, Emit: []string{"link"}},
			want: false,
		},
		{
			name: "bin without link in emit",
			args: Args{CrateName: "foo", CrateTypes: []string{"bin"}, Emit: []string{"metadata"}},
			want: false,
		},
		{
			name: "print-only query invocation",
			args: Args{CrateTypes: []string{"bin"}, Print: []string{"cfg"}},
			want: false,
		},
		{
			name: "no crate types at all",
			args: Args{CrateName: "foo"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.args.ShouldInject(); got != tt.want {
				t.Errorf("ShouldInject() = %v, want %v", got, tt.want)
			}
		})
	}
}
