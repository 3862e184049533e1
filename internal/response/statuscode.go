package response

import "fmt"

type StatusCode int

const (
	StatusOK                    StatusCode = 200
	StatusBadRequest            StatusCode = 400
	StatusNotFound              StatusCode = 404
	StatusMethodNotAllowed      StatusCode = 405
	StatusRequestEntityTooLarge StatusCode = 413
	StatusInternalServerError   StatusCode = 500
)

// Reason returns the reason phrase, or "" for codes this server never sends.
func (s StatusCode) Reason() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusBadRequest:
		return "Bad Request"
	case StatusNotFound:
		return "Not Found"
	case StatusMethodNotAllowed:
		return "Method Not Allowed"
	case StatusRequestEntityTooLarge:
		return "Request Entity Too Large"
	case StatusInternalServerError:
		return "Internal Server Error"
	default:
		return ""
	}
}

func (s StatusCode) StatusLine() []byte {
	return fmt.Appendf(nil, "HTTP/1.1 %d %s\r\n", int(s), s.Reason())
}
