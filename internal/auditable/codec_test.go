package auditable

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sbom := SBOM{Packages: []Package{
		{Name: "leaf", Version: "0.1.0", Source: SourceOfCratesIO},
		{Name: "root", Version: "1.0.0", Source: SourceOfLocal, Root: true, Dependencies: []int{0}},
	}}

	blob, err := Encode(sbom)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	raw, err := Decompress(blob)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(sbom, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeValidation(t *testing.T) {
	for _, tt := range []struct {
		name string
		json string
		want error
	}{
		{
			name: "no root",
			json: `{"packages":[{"name":"a","version":"1.0.0","source":"local"}]}`,
			want: ErrRootCount,
		},
		{
			name: "two roots",
			json: `{"packages":[{"name":"a","version":"1.0.0","source":"local","root":true},{"name":"b","version":"1.0.0","source":"local","root":true}]}`,
			want: ErrRootCount,
		},
		{
			name: "dependency index out of range",
			json: `{"packages":[{"name":"a","version":"1.0.0","source":"local","root":true,"dependencies":[5]}]}`,
			want: ErrDepIndex,
		},
		{
			name: "dependency indices not ascending",
			json: `{"packages":[{"name":"a","version":"1.0.0","source":"local","root":true,"dependencies":[1,0]},{"name":"b","version":"1.0.0","source":"local"},{"name":"c","version":"1.0.0","source":"local"}]}`,
			want: ErrDepSorting,
		},
		{
			name: "cyclic",
			json: `{"packages":[{"name":"a","version":"1.0.0","source":"local","root":true,"dependencies":[1]},{"name":"b","version":"1.0.0","source":"local","dependencies":[0]}]}`,
			want: ErrCyclic,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.json))
			if err != tt.want {
				t.Fatalf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPackageFieldOmission(t *testing.T) {
	p := Package{Name: "a", Version: "1.0.0", Source: SourceOfLocal}
	data, err := EncodeJSON(SBOM{Packages: []Package{p}})
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	want := `{"packages":[{"name":"a","source":"local","version":"1.0.0"}]}`
	if string(data) != want {
		t.Errorf("EncodeJSON() = %s, want %s", data, want)
	}
}

func TestSourceRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		raw  string
		want Source
	}{
		{raw: "registry+https://github.com/rust-lang/crates.io-index", want: SourceOfCratesIO},
		{raw: "registry+https://my.registry.example/index", want: SourceOfRegistry},
		{raw: "git+https://github.com/foo/bar#deadbeef", want: SourceOfGit},
		{raw: "", want: SourceOfLocal},
		{raw: "local", want: SourceOfLocal},
		{raw: "path+file:///home/me/crate", want: SourceOfLocal},
	} {
		t.Run(tt.raw, func(t *testing.T) {
			got := sourceOf(tt.raw)
			if got != tt.want {
				t.Errorf("sourceOf(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}
