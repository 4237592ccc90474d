// Package main is the default handler plugin: built with
// `go build -buildmode=plugin -o libhttp_handler.so ./plugin/handler`
// and (re)loaded by internal/pluginhost. It holds no package-level
// mutable state; every call rebuilds its answer purely from its
// arguments.
package main

import (
	"github.com/yourusername/forkhttpd/internal/formstore"
	"github.com/yourusername/forkhttpd/internal/httpwire"
	"github.com/yourusername/forkhttpd/internal/pluginapi"
	"github.com/yourusername/forkhttpd/internal/staticfile"
)

// HandleRequest is resolved by plugin.Lookup(pluginapi.EntryPointSymbol).
var HandleRequest pluginapi.HandlerFunc = handleRequest

func handleRequest(req *pluginapi.Request, docRoot, storePath string) *pluginapi.Response {
	switch req.Method {
	case "GET", "HEAD":
		resp := staticfile.Serve(req.Method, req.Target, docRoot)
		return toPlugin(pluginapi.KindFile, resp)
	case "POST":
		resp := formstore.Serve(req.Body, storePath)
		return toPlugin(pluginapi.KindForm, resp)
	default:
		h := httpwire.Header{}
		h.Add("Allow", "GET, HEAD, POST")
		resp := httpwire.NewResponse(httpwire.StatusMethodNotAllowed, h, nil)
		return toPlugin(pluginapi.KindError, resp)
	}
}

func toPlugin(kind pluginapi.Kind, resp *httpwire.Response) *pluginapi.Response {
	return &pluginapi.Response{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Reason:     resp.Reason,
		Headers:    resp.Header.Pairs(),
		Body:       resp.Body,
		FilePath:   resp.FilePath,
		NoBody:     resp.NoBody,
	}
}

func main() {}
