// Package cargoargs extracts the handful of cargo build-tool flags this
// tool needs to remember across the fork into the rustc wrapper — cargo
// itself doesn't pass them through to the wrapper's environment, so the
// front-end captures them once and hands them to the wrapper as JSON.
package cargoargs

import "encoding/json"

// Env is the name of the environment variable the front end uses to pass
// a serialized Args to the rustc wrapper it spawns.
const Env = "CARGO_AUDITABLE_ORIG_ARGS"

// Args holds the cargo flags that affect how the wrapper should behave:
// --offline/--locked/--frozen change what's safe to invoke, and --config
// values may redirect where crates are fetched from.
type Args struct {
	Offline bool     `json:"offline"`
	Locked  bool     `json:"locked"`
	Frozen  bool     `json:"frozen"`
	Config  []string `json:"config"`
}

// Parse extracts the recognized flags from a cargo invocation's argument
// list, the same tolerant single-pass scan as internal/rustcargs. Anything
// after a bare "--" belongs to the program being run, not to cargo, and is
// never inspected.
func Parse(args []string) Args {
	var a Args
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		switch {
		case arg == "--offline":
			a.Offline = true
		case arg == "--locked":
			a.Locked = true
		case arg == "--frozen":
			a.Frozen = true
		case arg == "--config":
			if i+1 < len(args) {
				i++
				a.Config = append(a.Config, args[i])
			}
		}
	}
	return a
}

// ToJSON serializes a for storage in the Env environment variable.
func (a Args) ToJSON() (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FromJSON recovers an Args previously serialized by ToJSON. Since the
// front end is the only writer of this value, a parse failure here means
// something outside this tool tampered with the environment in transit.
func FromJSON(s string) (Args, error) {
	var a Args
	err := json.Unmarshal([]byte(s), &a)
	return a, err
}
