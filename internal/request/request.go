package request

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nhdewitt/route-server/internal/headers"
)

type requestState int

const (
	bufferSize = 8
	crlf       = "\r\n"
)

const (
	stateInitialized requestState = iota
	stateParsingHeaders
	stateDone
)

var (
	ErrRequestTooLarge = errors.New("request header block too large")
	ErrEarlyEOF        = errors.New("early EOF")
)

type Request struct {
	RequestLine RequestLine
	Headers     headers.Headers
	state       requestState
}

type RequestLine struct {
	HttpVersion   string
	RequestTarget string
	Method        string
}

// Path is the request target without its query string or fragment.
func (r *Request) Path() string {
	target := r.RequestLine.RequestTarget
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		return target[:i]
	}
	return target
}

// RequestFromReader reads until the end of the header block. Any body is
// left unread. A limit <= 0 disables the size check.
func RequestFromReader(reader io.Reader, limit int64) (*Request, error) {
	buf := make([]byte, bufferSize)
	readToIndex := 0
	var consumed int64

	r := Request{
		Headers: headers.NewHeaders(),
		state:   stateInitialized,
	}

	for r.state != stateDone {
		if readToIndex == len(buf) {
			tmpBuf := make([]byte, len(buf)*2)
			copy(tmpBuf, buf[:readToIndex])
			buf = tmpBuf
		}

		n, err := reader.Read(buf[readToIndex:])
		if n > 0 {
			readToIndex += n

			bytesParsed, perr := r.parse(buf[:readToIndex])
			if perr != nil {
				return nil, perr
			}

			copy(buf, buf[bytesParsed:readToIndex])
			readToIndex -= bytesParsed
			consumed += int64(bytesParsed)

			if limit > 0 && r.state != stateDone && consumed+int64(readToIndex) > limit {
				return nil, ErrRequestTooLarge
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				if r.state != stateDone {
					return nil, fmt.Errorf("error parsing data: %w", ErrEarlyEOF)
				}
				break
			}
			return nil, err
		}
	}

	return &r, nil
}

// parse consumes as many complete lines as data holds.
func (r *Request) parse(data []byte) (int, error) {
	total := 0
	for r.state != stateDone {
		n, err := r.parseSingle(data[total:])
		if err != nil {
			return 0, err
		}
		if n == 0 {
			break
		}
		total += n
	}
	return total, nil
}

func (r *Request) parseSingle(data []byte) (int, error) {
	switch r.state {
	case stateInitialized:
		parsed, requestLine, err := parseRequestLine(data)
		if err != nil {
			return 0, fmt.Errorf("error parsing data: %v", err)
		}
		if parsed == 0 {
			return 0, nil
		}

		r.RequestLine = requestLine
		r.state = stateParsingHeaders
		return parsed, nil
	case stateParsingHeaders:
		n, done, err := r.Headers.Parse(data)
		if err != nil {
			return 0, fmt.Errorf("error parsing headers: %v", err)
		}
		if done {
			r.state = stateDone
		}
		return n, nil
	case stateDone:
		return 0, fmt.Errorf("error: trying to read data in a done state")
	default:
		return 0, fmt.Errorf("error: unknown state")
	}
}

func parseRequestLine(req []byte) (int, RequestLine, error) {
	idx := bytes.Index(req, []byte(crlf))
	if idx == -1 {
		return 0, RequestLine{}, nil
	}
	line := string(req[:idx])

	rl, err := requestLineFromString(line)
	if err != nil {
		return 0, RequestLine{}, err
	}

	return idx + len(crlf), *rl, nil
}

func requestLineFromString(s string) (*RequestLine, error) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid request line: %s", s)
	}

	method := parts[0]
	for _, c := range method {
		if c < 'A' || c > 'Z' {
			return nil, fmt.Errorf("invalid method: %s", method)
		}
	}

	target := parts[1]
	if !strings.HasPrefix(target, "/") {
		return nil, fmt.Errorf("invalid request target: %s", target)
	}

	protocol, version, ok := strings.Cut(parts[2], "/")
	if !ok || protocol != "HTTP" || version != "1.1" {
		return nil, fmt.Errorf("invalid HTTP version: %s", parts[2])
	}

	return &RequestLine{
		Method:        method,
		RequestTarget: target,
		HttpVersion:   version,
	}, nil
}
