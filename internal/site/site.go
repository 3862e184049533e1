// Package site loads the resources named in the route table and keeps a
// precomputed response for each of them.
package site

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/nhdewitt/route-server/internal/response"
)

var ErrNoResources = errors.New("no resources to load")

type resource struct {
	body     []byte
	rendered []byte
}

// Site is immutable after Load.
type Site struct {
	resources map[string]resource
	names     []string
}

// Load reads every named resource once from fs.
func Load(fs billy.Filesystem, names []string) (*Site, error) {
	if len(names) == 0 {
		return nil, ErrNoResources
	}

	s := &Site{resources: make(map[string]resource, len(names))}
	for _, name := range names {
		if _, ok := s.resources[name]; ok {
			continue
		}
		body, err := readFile(fs, name)
		if err != nil {
			return nil, fmt.Errorf("load resource %q: %w", name, err)
		}
		s.resources[name] = resource{
			body:     body,
			rendered: response.Render(response.StatusOK, ContentType(name), body),
		}
		s.names = append(s.names, name)
	}
	return s, nil
}

func readFile(fs billy.Filesystem, name string) ([]byte, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Response returns the full 200 response for name.
func (s *Site) Response(name string) ([]byte, bool) {
	r, ok := s.resources[name]
	return r.rendered, ok
}

// Body returns the raw contents of name.
func (s *Site) Body(name string) ([]byte, bool) {
	r, ok := s.resources[name]
	return r.body, ok
}

// Names lists resources in load order.
func (s *Site) Names() []string {
	return append([]string(nil), s.names...)
}

func ContentType(name string) string {
	switch ext := path.Ext(name); ext {
	case ".html", ".htm":
		return "text/html"
	case "":
		return "application/octet-stream"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}
