// Package curl turns a curl command line into a request intent, so a
// command copied from documentation or browser dev tools can be replayed.
package curl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/gpapi/packages/http"
)

// ErrUnsupported is returned for curl features that have no intent
// equivalent.
var ErrUnsupported = errors.New("unsupported curl option")

// Command represents a parsed curl command.
type Command struct {
	Method          string
	URL             string
	Headers         []string // "Name: Value" lines in command order
	Data            []string
	Files           []string // -F values
	BasicAuth       string
	Get             bool
	Insecure        bool
	FollowRedirects bool
}

// Parse parses a curl command string. A leading "curl" is optional and
// backslash line continuations are accepted.
func Parse(cmdline string) (*Command, error) {
	cmdline = strings.NewReplacer("\\\r\n", " ", "\\\n", " ").Replace(cmdline)
	return ParseArgs(tokenize(strings.TrimSpace(cmdline)))
}

// ParseArgs parses an already split curl argument list, such as os.Args.
func ParseArgs(tokens []string) (*Command, error) {
	parsed := &Command{}

	if len(tokens) > 0 && tokens[0] == "curl" {
		tokens = tokens[1:]
	}

	i := 0
	value := func(flag string) (string, error) {
		if i+1 >= len(tokens) {
			return "", fmt.Errorf("missing value for %s", flag)
		}
		v := tokens[i+1]
		i += 2
		return v, nil
	}

	for i < len(tokens) {
		token := tokens[i]

		var err error
		var v string
		switch token {
		case "-X", "--request":
			v, err = value(token)
			parsed.Method = strings.ToUpper(v)

		case "-H", "--header":
			v, err = value(token)
			parsed.Headers = append(parsed.Headers, v)

		case "-d", "--data", "--data-raw", "--data-binary", "--data-ascii":
			v, err = value(token)
			parsed.Data = append(parsed.Data, v)

		case "--json":
			v, err = value(token)
			parsed.Data = append(parsed.Data, v)
			parsed.Headers = append(parsed.Headers, "Content-Type: application/json", "Accept: application/json")

		case "-F", "--form":
			v, err = value(token)
			parsed.Files = append(parsed.Files, v)

		case "-u", "--user":
			parsed.BasicAuth, err = value(token)

		case "-A", "--user-agent":
			v, err = value(token)
			parsed.Headers = append(parsed.Headers, "User-Agent: "+v)

		case "-e", "--referer":
			v, err = value(token)
			parsed.Headers = append(parsed.Headers, "Referer: "+v)

		case "-b", "--cookie":
			v, err = value(token)
			parsed.Headers = append(parsed.Headers, "Cookie: "+v)

		case "--url":
			parsed.URL, err = value(token)

		case "-G", "--get":
			parsed.Get = true
			i++

		case "-k", "--insecure":
			parsed.Insecure = true
			i++

		case "-L", "--location":
			parsed.FollowRedirects = true
			i++

		default:
			switch {
			case strings.HasPrefix(token, "-"):
				// Skip unknown flags with potential values
				if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
					i += 2
				} else {
					i++
				}
			default:
				if parsed.URL == "" && isURL(token) {
					parsed.URL = token
				}
				i++
			}
		}
		if err != nil {
			return nil, err
		}
	}

	if parsed.URL == "" {
		return nil, fmt.Errorf("no URL found in curl command")
	}

	return parsed, nil
}

// Intent builds the request intent curl would send. Data goes to the query
// string with -G, to a form body otherwise. A single -F field=@path becomes a
// multipart upload. Header values are sent without spaces, so -u and any
// header whose value contains a space fail with ErrUnsupported.
func (c *Command) Intent() (http.Intent, error) {
	if c.BasicAuth != "" {
		return http.Intent{}, fmt.Errorf("%w: -u (Basic credentials need a space in the header value)", ErrUnsupported)
	}

	headers := append([]string(nil), c.Headers...)
	hasContentType := false
	for _, h := range headers {
		name, value, _ := strings.Cut(h, ":")
		if strings.ContainsAny(strings.TrimSpace(value), " \t") {
			return http.Intent{}, fmt.Errorf("%w: header %q has spaces in its value", ErrUnsupported, h)
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Type") {
			hasContentType = true
		}
	}

	method := c.Method
	var input string

	switch {
	case len(c.Files) > 0:
		if len(c.Data) > 0 {
			return http.Intent{}, fmt.Errorf("%w: -d and -F together", ErrUnsupported)
		}
		if len(c.Files) > 1 {
			return http.Intent{}, fmt.Errorf("%w: more than one -F field", ErrUnsupported)
		}
		field, path, ok := strings.Cut(c.Files[0], "=@")
		if !ok {
			return http.Intent{}, fmt.Errorf("%w: -F %s is not a file upload (expected field=@path)", ErrUnsupported, c.Files[0])
		}
		input = field + "=" + path
		if !hasContentType {
			headers = append(headers, "Content-Type: multipart/form-data")
		}
		if method == "" {
			method = "POST"
		}

	case len(c.Data) > 0:
		input = strings.Join(c.Data, "&")
		if c.Get {
			if method == "" {
				method = "GET"
			}
			break
		}
		if !hasContentType {
			headers = append(headers, "Content-Type: application/x-www-form-urlencoded")
		}
		if method == "" {
			method = "POST"
		}
	}

	if method == "" {
		method = "GET"
	}

	return http.Intent{
		Method:     method,
		URL:        c.URL,
		RawHeaders: strings.Join(headers, "\n"),
		RawBody:    input,
	}, nil
}

// tokenize splits a curl command into tokens, respecting quotes.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
			}
		case '\'':
			if !inDoubleQuote {
				inSingleQuote = !inSingleQuote
			} else {
				current.WriteRune(r)
			}
		case '"':
			if !inSingleQuote {
				inDoubleQuote = !inDoubleQuote
			} else {
				current.WriteRune(r)
			}
		case ' ', '\t', '\n', '\r':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isURL checks if a string looks like a URL.
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
