package market

import "testing"

func TestResolvePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		query    string
		chain    Chain
		want     Market
		wantOK   bool
	}{
		{
			name:   "all unset defaults to sea",
			chain:  Chain{},
			want:   SEA,
			wantOK: true,
		},
		{
			name:   "channel auto falls through to server",
			chain:  Chain{User: Unset(), Channel: Auto(), Server: Concrete("sea")},
			want:   SEA,
			wantOK: true,
		},
		{
			name:   "user beats channel and server",
			chain:  Chain{User: Concrete("global"), Channel: Concrete("sea"), Server: Concrete("sea")},
			want:   Global,
			wantOK: true,
		},
		{
			name:   "user auto defers to channel",
			chain:  Chain{User: Auto(), Channel: Concrete("global"), Server: Concrete("sea")},
			want:   Global,
			wantOK: true,
		},
		{
			name:   "all auto defaults to sea",
			chain:  Chain{User: Auto(), Channel: Auto(), Server: Auto()},
			want:   SEA,
			wantOK: true,
		},
		{
			name:     "explicit overrides whole chain",
			explicit: "global",
			chain:    Chain{User: Concrete("sea"), Channel: Concrete("sea"), Server: Concrete("sea")},
			want:     Global,
			wantOK:   true,
		},
		{
			name:     "single letter shorthand s",
			explicit: "s",
			want:     SEA,
			wantOK:   true,
		},
		{
			name:     "single letter shorthand g",
			explicit: "g",
			want:     Global,
			wantOK:   true,
		},
		{
			name:   "help query forces cmd",
			query:  "help",
			chain:  Chain{User: Concrete("global")},
			want:   Cmd,
			wantOK: true,
		},
		{
			name:     "explicit cmd routes to command handling",
			explicit: "cmd",
			query:    "myserver=sea",
			want:     Cmd,
			wantOK:   true,
		},
		{
			name:     "unknown explicit token is invalid",
			explicit: "nope",
			want:     Market("nope"),
			wantOK:   false,
		},
		{
			name:   "unknown stored token is invalid",
			chain:  Chain{User: Concrete("moon")},
			want:   Market("moon"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.explicit, tt.query, tt.chain)

			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Resolve(%q, %q) = (%q, %v), want (%q, %v)",
					tt.explicit, tt.query, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParsePreference(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
		want Preference
	}{
		{"absent key", "", false, Unset()},
		{"empty value", "", true, Unset()},
		{"auto sentinel", "auto", true, Auto()},
		{"concrete sea", "sea", true, Concrete("sea")},
		{"concrete junk kept verbatim", "moon", true, Concrete("moon")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePreference(tt.raw, tt.ok)

			if got != tt.want {
				t.Errorf("ParsePreference(%q, %v) = %+v, want %+v", tt.raw, tt.ok, got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	seaInfo, ok := Lookup(SEA)
	if !ok {
		t.Fatal("Lookup(SEA) not found")
	}

	if seaInfo.ColorInt != 35037 || seaInfo.Icon != "[SEA] " {
		t.Errorf("unexpected SEA metadata: %+v", seaInfo)
	}

	globalInfo, ok := Lookup(Global)
	if !ok {
		t.Fatal("Lookup(Global) not found")
	}

	if globalInfo.ColorInt != 16776960 || globalInfo.APIBaseURL != "https://api-global.poporing.life" {
		t.Errorf("unexpected Global metadata: %+v", globalInfo)
	}

	if _, ok := Lookup(Cmd); ok {
		t.Error("Lookup(Cmd) should not return metadata")
	}
}
