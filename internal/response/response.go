package response

import (
	"bytes"
	"strconv"
	"time"

	"github.com/nhdewitt/route-server/internal/headers"
)

func DefaultHeaders(contentLen int) headers.Headers {
	h := headers.NewHeaders()
	h.Set("Content-Length", strconv.Itoa(contentLen))
	h.Set("Connection", "close")
	h.Set("Content-Type", "text/plain")
	h.Set("Date", time.Now().UTC().Format(time.RFC1123))

	return h
}

// Render builds a complete response so it can be computed once and
// written to every connection that needs it. No Date header is included.
func Render(statusCode StatusCode, contentType string, body []byte) []byte {
	return RenderWith(statusCode, contentType, body, nil)
}

// RenderWith is Render with extra header fields, which replace defaults
// of the same name.
func RenderWith(statusCode StatusCode, contentType string, body []byte, extra headers.Headers) []byte {
	h := DefaultHeaders(len(body))
	h.Del("Date")
	h.Replace("Content-Type", contentType)
	for k, v := range extra {
		h.Replace(k, v)
	}

	var buf bytes.Buffer
	buf.Write(statusCode.StatusLine())
	buf.Write(h.Bytes())
	buf.Write(body)
	return buf.Bytes()
}

// Status renders a short plain-text response for statusCode.
func Status(statusCode StatusCode) []byte {
	return StatusWith(statusCode, nil)
}

func StatusWith(statusCode StatusCode, extra headers.Headers) []byte {
	body := strconv.Itoa(int(statusCode)) + " " + statusCode.Reason() + "\n"
	return RenderWith(statusCode, "text/plain", []byte(body), extra)
}

// HeadOf returns the status line and header block of a rendered response.
func HeadOf(rendered []byte) []byte {
	if i := bytes.Index(rendered, []byte("\r\n\r\n")); i >= 0 {
		return rendered[:i+4]
	}
	return rendered
}
