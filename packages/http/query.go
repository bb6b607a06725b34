package http

import (
	neturl "net/url"
	"strings"
)

// Param is one key=value pair. Order and duplicates are significant.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query or form parameters.
type Params []Param

// ParseParams parses "k1=v1&k2=v2". Keys and values are percent-decoded.
// Empty segments are skipped; a segment without "=" or with an empty key
// is rejected.
func ParseParams(raw string) (Params, error) {
	var params Params

	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}

		k, v, found := strings.Cut(pair, "=")
		if !found || k == "" {
			return nil, newError(KindMalformedParam, quote(pair), nil)
		}

		key, err := neturl.QueryUnescape(k)
		if err != nil {
			return nil, newError(KindMalformedParam, quote(pair), err)
		}
		value, err := neturl.QueryUnescape(v)
		if err != nil {
			return nil, newError(KindMalformedParam, quote(pair), err)
		}

		params = append(params, Param{Key: key, Value: value})
	}

	return params, nil
}

// Encode renders the params in their original order. Unlike url.Values it
// does not sort by key.
func (p Params) Encode() string {
	var sb strings.Builder
	for i, param := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(neturl.QueryEscape(param.Key))
		sb.WriteByte('=')
		sb.WriteString(neturl.QueryEscape(param.Value))
	}
	return sb.String()
}

// Values converts p to url.Values, keeping every value of repeated keys.
func (p Params) Values() neturl.Values {
	values := make(neturl.Values, len(p))
	for _, param := range p {
		values.Add(param.Key, param.Value)
	}
	return values
}

// BuildURL appends params to rawURL, after any query string it already has.
func BuildURL(rawURL string, params Params) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}

	u, err := neturl.Parse(rawURL)
	if err != nil {
		return "", newError(KindInvalidURL, rawURL, err)
	}

	encoded := params.Encode()
	if u.RawQuery == "" {
		u.RawQuery = encoded
	} else {
		u.RawQuery = u.RawQuery + "&" + encoded
	}
	return u.String(), nil
}
