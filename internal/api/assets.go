package api

import "strings"

// DefaultAssetBaseURL is the public bucket image keys resolve against.
const DefaultAssetBaseURL = "https://threadswap-dev-isaac-9080d.s3.eu-west-2.amazonaws.com"

// AssetURL resolves a stored image to a displayable URL: the signed URL
// when the backend provided one, else baseURL joined with key. It reports
// false when neither is available.
func AssetURL(signed *string, key, baseURL string) (string, bool) {
	if signed != nil && *signed != "" {
		return *signed, true
	}
	if key == "" {
		return "", false
	}
	if baseURL == "" {
		baseURL = DefaultAssetBaseURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + key, true
}
