package query

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Normalized
	}{
		{
			name: "mention prefix",
			text: "/ppr awakening potion",
			want: Normalized{Query: "awakening potion", Activation: "_mention", Triggered: true},
		},
		{
			name: "mention prefix trims whitespace",
			text: "/ppr   elu  ",
			want: Normalized{Query: "elu", Activation: "_mention", Triggered: true},
		},
		{
			name: "sea url trigger translates underscores",
			text: "https://poporing.life/?search=awakening_potion",
			want: Normalized{Query: "awakening potion", MarketHint: "sea", Activation: "_url_sea", Triggered: true},
		},
		{
			name: "global url trigger",
			text: "https://global.poporing.life/?search=sharp_arrow",
			want: Normalized{Query: "sharp arrow", MarketHint: "global", Activation: "_url_global", Triggered: true},
		},
		{
			name: "url with exact internal name keeps underscores",
			text: "https://poporing.life/?search=:elu_cit",
			want: Normalized{Query: ":elu_cit", MarketHint: "sea", Activation: "_url_sea", Triggered: true},
		},
		{
			name: "plain text is untriggered direct input",
			text: "awakening potion",
			want: Normalized{Query: "awakening potion", Activation: "_direct"},
		},
		{
			name: "empty text",
			text: "   ",
			want: Normalized{Query: "", Activation: "_direct"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.text, "/ppr")
			if got != tt.want {
				t.Errorf("Normalize(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalizeFirstPrefixWins(t *testing.T) {
	got := Normalize("@poporingbot elu", "/ppr", "@poporingbot")
	if got.Query != "elu" || !got.Triggered {
		t.Errorf("unexpected result: %+v", got)
	}
}
