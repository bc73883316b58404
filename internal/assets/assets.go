// Package assets embeds the browser client that drives live blocks.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"strings"
)

//go:embed client/*
var clientFS embed.FS

// ClientFS returns the embedded client files.
func ClientFS() fs.FS {
	sub, err := fs.Sub(clientFS, "client")
	if err != nil {
		panic(err)
	}
	return sub
}

// Get returns an embedded client file and its content type. Names are
// relative to the client directory; anything that tries to leave it is
// rejected.
func Get(name string) ([]byte, string, error) {
	if name == "" || strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
		return nil, "", fmt.Errorf("invalid asset name %q", name)
	}
	data, err := clientFS.ReadFile("client/" + name)
	if err != nil {
		return nil, "", err
	}
	return data, contentType(name), nil
}

func contentType(name string) string {
	switch ext := path.Ext(name); ext {
	case ".js":
		return "application/javascript; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}
