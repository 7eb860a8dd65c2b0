package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/pretty"
)

const requestTimeout = 30 * time.Second

// getJSON fetches path from the server and decodes the JSON response.
func getJSON(base, path string, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return requests.
		URL(base + path).
		ToJSON(out).
		Fetch(ctx)
}

// postJSON posts body (may be nil) to path and decodes the JSON response
// into out (may be nil for endpoints that reply with no content).
func postJSON(base, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	r := requests.
		URL(base + path).
		Post()
	if body != nil {
		r = r.BodyJSON(body)
	}
	if out != nil {
		r = r.ToJSON(out)
	}
	return r.Fetch(ctx)
}

// streamTo fetches path and copies the raw response body to w. Used for
// the device dump, which is a plain-text hex listing rather than JSON.
func streamTo(base, path string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	return requests.
		URL(base + path).
		ToWriter(w).
		Fetch(ctx)
}

// printJSON pretty-prints v as indented JSON.
func printJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(pretty.Pretty(b))
	return err
}

// parseAddr accepts decimal or 0x-prefixed device addresses.
func parseAddr(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint32(n), nil
}
