// Command forkquery is the offline, read-only CLI for inspecting the
// persistent POST store. It never opens the store for writing.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/yourusername/forkhttpd/internal/config"
	"github.com/yourusername/forkhttpd/internal/kvstore"
)

func main() {
	list := flag.Bool("l", false, "list submission ids")
	show := flag.String("i", "", "show fields of submission id")
	help := flag.Bool("h", false, "show help")
	storePath := flag.String("store", config.DefaultStorePath, "KV store path")
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		return
	}
	if !*list && *show == "" {
		usage()
		os.Exit(1)
	}

	store, err := kvstore.OpenReadOnly(*storePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "forkquery: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *list:
		if err := listSubmissions(store); err != nil {
			fmt.Fprintf(os.Stderr, "forkquery: %v\n", err)
			os.Exit(1)
		}
	default:
		if err := showSubmission(store, *show); err != nil {
			fmt.Fprintf(os.Stderr, "forkquery: %v\n", err)
			os.Exit(1)
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: forkquery [-store path] -l | -i <submission-id> | -h\n")
	flag.PrintDefaults()
}

// listSubmissions prints every submission id present, derived from
// the ".keys" commit-marker records: a submission without one was
// never committed and is not listed.
func listSubmissions(store *kvstore.Store) error {
	cur, err := store.Cursor()
	if err != nil {
		return err
	}
	defer cur.Close()

	for k, _, ok := cur.First(); ok; k, _, ok = cur.Next() {
		key := string(k)
		if id, isKeys := strings.CutSuffix(key, ".keys"); isKeys {
			fmt.Println(id)
		}
	}
	return nil
}

// showSubmission prints every field of submission id, in the order
// the fields were submitted.
func showSubmission(store *kvstore.Store, id string) error {
	keysRaw, err := store.Get([]byte(id + ".keys"))
	if err != nil {
		if err == kvstore.ErrNotFound {
			return fmt.Errorf("submission %q not found", id)
		}
		return err
	}
	if len(keysRaw) == 0 {
		return nil
	}
	for _, k := range strings.Split(string(keysRaw), ",") {
		v, err := store.Get([]byte(id + "." + k))
		if err != nil {
			if err == kvstore.ErrNotFound {
				continue
			}
			return err
		}
		fmt.Printf("Key: %s, Value: %s\n", k, v)
	}
	return nil
}
