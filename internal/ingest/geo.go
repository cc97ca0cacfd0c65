// Lanolin - Wool Auction Market Analytics
// Copyright 2026 Merino Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merinolabs/lanolin

package ingest

import (
	"net/http"
	"net/url"
	"strings"
)

// Geo is the best-effort location derived from CDN headers.
type Geo struct {
	Country string
	Region  string
	City    string
}

// GeoFromHeaders reads geo hints from CDN header conventions. Conventions
// are checked in order (Cloudflare, Vercel, CloudFront) and the first one
// that reports a country wins; fields within a convention are best-effort.
func GeoFromHeaders(h http.Header) Geo {
	if country := h.Get("CF-IPCountry"); country != "" && country != "XX" {
		return Geo{
			Country: strings.ToUpper(country),
			Region:  h.Get("CF-Region"),
			City:    h.Get("CF-IPCity"),
		}
	}

	if country := h.Get("X-Vercel-IP-Country"); country != "" {
		return Geo{
			Country: strings.ToUpper(country),
			Region:  h.Get("X-Vercel-IP-Country-Region"),
			City:    decodeHeaderValue(h.Get("X-Vercel-IP-City")),
		}
	}

	if country := h.Get("CloudFront-Viewer-Country"); country != "" {
		return Geo{
			Country: strings.ToUpper(country),
			Region:  h.Get("CloudFront-Viewer-Country-Region"),
			City:    h.Get("CloudFront-Viewer-City"),
		}
	}

	return Geo{}
}

// decodeHeaderValue undoes the percent-encoding Vercel applies to
// non-ASCII city names. Returns the raw value when decoding fails.
func decodeHeaderValue(v string) string {
	decoded, err := url.QueryUnescape(v)
	if err != nil {
		return v
	}
	return decoded
}
