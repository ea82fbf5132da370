package driver

import (
	"os"
	"reflect"
	"testing"

	"github.com/rust-secure-code/cargo-auditable-go/internal/rustcargs"
	"github.com/rust-secure-code/cargo-auditable-go/internal/targetinfo"
)

func TestFirstSBOMPath(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{name: "empty", env: "", want: ""},
		{name: "single path", env: "/tmp/a.json", want: "/tmp/a.json"},
		{name: "multiple paths takes first", env: "/tmp/a.json" + string(os.PathListSeparator) + "/tmp/b.json", want: "/tmp/a.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstSBOMPath(tt.env); got != tt.want {
				t.Errorf("firstSBOMPath(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestWithoutWorkspaceWrapper(t *testing.T) {
	env := []string{"PATH=/bin", "RUSTC_WORKSPACE_WRAPPER=/path/to/self", "HOME=/root"}
	got := withoutWorkspaceWrapper(env)
	want := []string{"PATH=/bin", "HOME=/root"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("withoutWorkspaceWrapper() = %v, want %v", got, want)
	}
}

func TestWithoutWorkspaceWrapperAbsentIsNoop(t *testing.T) {
	env := []string{"PATH=/bin", "HOME=/root"}
	got := withoutWorkspaceWrapper(env)
	if !reflect.DeepEqual(got, env) {
		t.Errorf("withoutWorkspaceWrapper() = %v, want %v", got, env)
	}
}

func TestRetainSymbolFlagELF(t *testing.T) {
	target := targetinfo.Target{"target_os": "linux", "target_family": "unix"}
	got := retainSymbolFlag(target, rustcargs.Args{})
	want := "-Wl,--undefined=" + versionInfoSymbol
	if got != want {
		t.Errorf("retainSymbolFlag() = %q, want %q", got, want)
	}
}

func TestRetainSymbolFlagELFBareLinker(t *testing.T) {
	target := targetinfo.Target{"target_os": "linux", "target_family": "unix"}
	parsed := rustcargs.Args{Codegen: map[string]string{"linker-flavor": "ld"}}
	got := retainSymbolFlag(target, parsed)
	want := "--undefined=" + versionInfoSymbol
	if got != want {
		t.Errorf("retainSymbolFlag() = %q, want %q", got, want)
	}
}

func TestRetainSymbolFlagMachO(t *testing.T) {
	target := targetinfo.Target{"target_vendor": "apple", "target_os": "macos"}
	got := retainSymbolFlag(target, rustcargs.Args{})
	want := "-Wl,-u,_" + versionInfoSymbol
	if got != want {
		t.Errorf("retainSymbolFlag() = %q, want %q", got, want)
	}
}

func TestRetainSymbolFlagCOFF(t *testing.T) {
	target := targetinfo.Target{"target_os": "windows", "target_env": "msvc"}
	got := retainSymbolFlag(target, rustcargs.Args{})
	want := "/INCLUDE:" + versionInfoSymbol
	if got != want {
		t.Errorf("retainSymbolFlag() = %q, want %q", got, want)
	}
}
