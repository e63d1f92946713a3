package oauthgate

import (
	"regexp"
)

// PathConfig classifies one range of request paths. Whitelisted paths require
// no authentication at all; fail-fast paths reject unauthenticated requests
// immediately instead of redirecting (API paths behind the session flow).
type PathConfig struct {
	Pattern   *regexp.Regexp
	Whitelist bool
	FailFast  bool
}

// MatchPath returns the first config whose pattern matches path. Order is
// significant: earlier entries take precedence, so specific overrides come
// before generic ranges. No match is a configuration error, never a silent
// allow or deny.
func MatchPath(configs []PathConfig, path string) (*PathConfig, error) {
	for i := range configs {
		if configs[i].Pattern.MatchString(path) {
			return &configs[i], nil
		}
	}
	return nil, newError(KindConfiguration, "no matching auth path config found at "+path, nil)
}
