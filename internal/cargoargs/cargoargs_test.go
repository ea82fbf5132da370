package cargoargs

import "testing"

func TestBasicParsing(t *testing.T) {
	args := Parse([]string{
		"--locked",
		"--config", "net.git-fetch-with-cli=true",
		"--offline",
	})
	if !args.Locked {
		t.Error("Locked = false, want true")
	}
	if !args.Offline {
		t.Error("Offline = false, want true")
	}
	if args.Frozen {
		t.Error("Frozen = true, want false")
	}
	if len(args.Config) != 1 || args.Config[0] != "net.git-fetch-with-cli=true" {
		t.Errorf("Config = %v, want [net.git-fetch-with-cli=true]", args.Config)
	}
}

func TestDoubleDashStopsParsing(t *testing.T) {
	args := Parse([]string{
		"--release",
		"--config", "net.git-fetch-with-cli=true",
		"--",
		"--offline",
	})
	if args.Offline {
		t.Error("Offline = true, want false (flag is after --)")
	}
	if len(args.Config) != 1 || args.Config[0] != "net.git-fetch-with-cli=true" {
		t.Errorf("Config = %v, want [net.git-fetch-with-cli=true]", args.Config)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	want := Args{Offline: true, Locked: true, Config: []string{"a=b", "c=d"}}
	s, err := want.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := FromJSON(s)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.Offline != want.Offline || got.Locked != want.Locked || got.Frozen != want.Frozen {
		t.Errorf("round trip flags = %+v, want %+v", got, want)
	}
	if len(got.Config) != len(want.Config) {
		t.Fatalf("round trip config = %v, want %v", got.Config, want.Config)
	}
	for i := range want.Config {
		if got.Config[i] != want.Config[i] {
			t.Errorf("Config[%d] = %q, want %q", i, got.Config[i], want.Config[i])
		}
	}
}

func TestEmptyArgs(t *testing.T) {
	args := Parse(nil)
	if args.Offline || args.Locked || args.Frozen || len(args.Config) != 0 {
		t.Errorf("Parse(nil) = %+v, want zero value", args)
	}
}
