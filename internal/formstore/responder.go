// Package formstore implements the POST form responder: decode an
// application/x-www-form-urlencoded body and append it to the
// persistent key/value store as a submission record.
package formstore

import (
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/forkhttpd/internal/httpwire"
	"github.com/yourusername/forkhttpd/internal/kvstore"
	"github.com/yourusername/forkhttpd/internal/urlutil"
)

// clock is overridden in tests so submission ids are deterministic.
var clock = time.Now

// pair is one decoded key/value from the submitted body, in the order
// it appeared.
type pair struct {
	key, value string
}

// Serve parses body as a form submission, persists it to the store at
// storePath, and returns the response for the POST request. An empty
// body is a 200 with no records created. Records are written serially
// with no rollback; the trailing ".keys" record is the commit marker,
// so a reader that doesn't find it must treat the submission as not
// committed.
func Serve(body []byte, storePath string) *httpwire.Response {
	if len(body) == 0 {
		return httpwire.NewResponse(httpwire.StatusOK, httpwire.Header{}, nil)
	}

	pairs := parseBody(body)

	store, err := kvstore.Open(storePath)
	if err != nil {
		return internalError()
	}
	defer store.Close()

	id, err := nextSubmissionID(store)
	if err != nil {
		return internalError()
	}

	keys := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if err := store.Put([]byte(id+"."+p.key), []byte(p.value)); err != nil {
			return internalError()
		}
		keys = append(keys, p.key)
	}
	// The keys record goes last: its presence is what commits the
	// submission for readers.
	if err := store.Put([]byte(id+".keys"), []byte(strings.Join(keys, ","))); err != nil {
		return internalError()
	}

	return summary(id, pairs)
}

// parseBody splits an application/x-www-form-urlencoded body into
// decoded key/value pairs. A segment without an "=" is silently
// skipped rather than failing the submission.
func parseBody(body []byte) []pair {
	var pairs []pair
	for _, seg := range strings.Split(string(body), "&") {
		if seg == "" {
			continue
		}
		i := strings.IndexByte(seg, '=')
		if i < 0 {
			continue
		}
		k := urlutil.Decode(seg[:i])
		v := urlutil.Decode(seg[i+1:])
		pairs = append(pairs, pair{key: k, value: v})
	}
	return pairs
}

// nextSubmissionID returns "post_<unix seconds>", probing the store's
// committed ".keys" records and appending "-<n>" until the id is
// unused, so two submissions landing in the same wall-clock second
// get distinct ids without any state held across calls.
func nextSubmissionID(store *kvstore.Store) (string, error) {
	base := "post_" + strconv.FormatInt(clock().Unix(), 10)
	id := base
	for n := 1; ; n++ {
		_, err := store.Get([]byte(id + ".keys"))
		if err == kvstore.ErrNotFound {
			return id, nil
		}
		if err != nil {
			return "", err
		}
		id = base + "-" + strconv.Itoa(n)
	}
}

func summary(id string, pairs []pair) *httpwire.Response {
	var b strings.Builder
	b.WriteString("<html><body><h1>Submission ")
	b.WriteString(id)
	b.WriteString("</h1><ul>")
	for _, p := range pairs {
		b.WriteString("<li>")
		b.WriteString(p.key)
		b.WriteString(" = ")
		b.WriteString(p.value)
		b.WriteString("</li>")
	}
	b.WriteString("</ul></body></html>")
	h := httpwire.Header{}
	h.Add("Content-Type", "text/html")
	return httpwire.NewResponse(httpwire.StatusOK, h, []byte(b.String()))
}

func internalError() *httpwire.Response {
	body := []byte("<html><body><h1>500 Internal Server Error</h1></body></html>")
	h := httpwire.Header{}
	h.Add("Content-Type", "text/html")
	return httpwire.NewResponse(httpwire.StatusInternalServerError, h, body)
}
