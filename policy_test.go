package oauthgate_test

import (
	"regexp"
	"testing"

	"github.com/panyam/oauthgate"
)

func TestMatchPath(t *testing.T) {
	configs := []oauthgate.PathConfig{
		{Pattern: regexp.MustCompile(`/public/special$`), FailFast: true},
		{Pattern: regexp.MustCompile(`/public/`), Whitelist: true},
		{Pattern: regexp.MustCompile(`/api/`), FailFast: true},
		{Pattern: regexp.MustCompile(`/app/`)},
	}

	tests := []struct {
		name      string
		path      string
		whitelist bool
		failFast  bool
	}{
		{"whitelisted range", "/public/index.html", true, false},
		{"earlier entry overrides later range", "/public/special", false, true},
		{"fail fast api", "/api/v1/items", false, true},
		{"normal app path", "/app/dashboard", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			matched, err := oauthgate.MatchPath(configs, tc.path)
			if err != nil {
				t.Fatalf("MatchPath(%q) error: %v", tc.path, err)
			}
			if matched.Whitelist != tc.whitelist || matched.FailFast != tc.failFast {
				t.Errorf("MatchPath(%q) = {whitelist:%v failFast:%v}, want {%v %v}",
					tc.path, matched.Whitelist, matched.FailFast, tc.whitelist, tc.failFast)
			}
		})
	}

	t.Run("no match is a configuration error", func(t *testing.T) {
		_, err := oauthgate.MatchPath(configs, "/elsewhere")
		if err == nil {
			t.Fatal("expected error for unmatched path")
		}
		if !oauthgate.HasKind(err, oauthgate.KindConfiguration) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})

	t.Run("empty config never matches", func(t *testing.T) {
		if _, err := oauthgate.MatchPath(nil, "/app/x"); err == nil {
			t.Fatal("expected error with no configs")
		}
	})
}
