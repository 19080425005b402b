package utm

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildURL appends the utm_source, utm_medium and utm_campaign parameters to
// base, keeping any query it already carries.
func BuildURL(base, source, medium, campaign string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("base url must be http or https")
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("base url must include a host")
	}

	query := parsed.Query()
	query.Set("utm_source", source)
	query.Set("utm_medium", medium)
	query.Set("utm_campaign", campaign)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
