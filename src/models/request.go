package models

import "net/url"

// MRequestOptions tunes a single upstream call. The zero value is a plain GET.
type MRequestOptions struct {
	Method  string
	Headers map[string]string
	Query   url.Values
}
