// Package http executes ad-hoc HTTP requests described by plain strings.
//
// A request arrives as a method, a URL, a raw header block and a raw input
// string. The package:
//   - Parses the header block into a HeaderMap (fail-fast on bad lines)
//   - Encodes GET/DELETE input as ordered query parameters
//   - Picks a body strategy from Content-Type: JSON, form, multipart or raw
//   - Loads multipart attachments from disk
//   - Sends the request through a per-call resty client with a timeout
//   - Returns the body text for any status code, or a classified *Error
package http
