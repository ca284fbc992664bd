package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/stockkeeper/internal/aggregate"
	"github.com/and161185/stockkeeper/internal/errs"
	"github.com/and161185/stockkeeper/internal/model"
)

func Test_readPicked_File_Stdin_None(t *testing.T) {
	p, err := readPicked("")
	if err != nil || p != nil {
		t.Fatalf("empty path should mean no image: %v %v", p, err)
	}

	tmp := filepath.Join(t.TempDir(), "milk.png")
	_ = os.WriteFile(tmp, []byte{1, 2, 3}, 0o600)
	p, err = readPicked(tmp)
	if err != nil || p.Filename != "milk.png" || len(p.Data) != 3 {
		t.Fatalf("readPicked(file): %+v %v", p, err)
	}

	r, w, _ := os.Pipe()
	old := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = old }()
	go func() { _, _ = io.WriteString(w, "img"); _ = w.Close() }()
	p, err = readPicked("-")
	if err != nil || string(p.Data) != "img" {
		t.Fatalf("readPicked(stdin): %+v %v", p, err)
	}

	if _, err := readPicked(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("missing file should error")
	}
}

func Test_printJSON_WritesPretty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printJSON(&buf, map[string]any{"a": 1})

	var m map[string]any
	if json.Unmarshal(buf.Bytes(), &m) != nil || m["a"] != float64(1) {
		t.Fatalf("printJSON produced invalid json: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  ")) {
		t.Fatalf("printJSON should indent")
	}
}

func Test_printItems_MarksLowStock(t *testing.T) {
	t.Parallel()

	url := "http://x/blobs/a.png"
	items := []model.Item{
		{ID: uuid.Must(uuid.NewV4()), Name: "Milk", Quantity: 2, Category: "Dairy", ImageURL: &url},
		{ID: uuid.Must(uuid.NewV4()), Name: "Rice", Quantity: 40, Category: "Dry"},
	}
	var buf bytes.Buffer
	if err := printItems(&buf, items, 5); err != nil {
		t.Fatalf("printItems: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header + 2 rows, got %q", buf.String())
	}
	if !strings.Contains(lines[1], "2 !") || !strings.Contains(lines[1], "yes") {
		t.Fatalf("low item should be marked: %q", lines[1])
	}
	if strings.Contains(lines[2], "!") {
		t.Fatalf("stocked item should not be marked: %q", lines[2])
	}
}

func Test_printSummary(t *testing.T) {
	t.Parallel()

	s := aggregate.Summarize([]model.Item{
		{Name: "a", Quantity: 10, Category: "X"},
		{Name: "b", Quantity: 1, Category: "Y"},
	}, 5)
	var buf bytes.Buffer
	printSummary(&buf, s)
	out := buf.String()
	for _, want := range []string{"items:        2", "total stock:  11", "low stock:    1 (threshold 5)", "most stocked: a (10)", "All, X, Y"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printSummary(&buf, aggregate.Summarize(nil, 5))
	if !strings.Contains(buf.String(), "most stocked: -") {
		t.Fatalf("empty summary: %s", buf.String())
	}
}

func Test_parseToggle(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{"on": true, "ON": true, "yes": true, "off": false, "0": false} {
		got, err := parseToggle(in)
		if err != nil || got != want {
			t.Fatalf("parseToggle(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := parseToggle("maybe"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func Test_patchFromFlags_OnlySetFields(t *testing.T) {
	t.Parallel()

	newFS := func() *flag.FlagSet {
		fs := newFlags("edit")
		fs.String("name", "", "")
		fs.String("qty", "", "")
		fs.String("category", "", "")
		return fs
	}

	fs := newFS()
	_ = fs.Parse([]string{"-qty", "7"})
	p, err := patchFromFlags(fs)
	if err != nil || p.Quantity == nil || *p.Quantity != 7 || p.Name != nil || p.Category != nil {
		t.Fatalf("unexpected patch %+v %v", p, err)
	}

	fs = newFS()
	_ = fs.Parse([]string{"-category", ""})
	p, err = patchFromFlags(fs)
	if err != nil || p.Category == nil || *p.Category != "" {
		t.Fatalf("explicit empty category should be sent: %+v %v", p, err)
	}

	fs = newFS()
	_ = fs.Parse(nil)
	if _, err := patchFromFlags(fs); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("empty patch should be rejected, got %v", err)
	}

	fs = newFS()
	_ = fs.Parse([]string{"-qty", "-3"})
	if _, err := patchFromFlags(fs); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("negative qty should be rejected, got %v", err)
	}
}

func Test_parseIDFlag(t *testing.T) {
	t.Parallel()

	if _, err := parseIDFlag(""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("missing id: %v", err)
	}
	if _, err := parseIDFlag("nope"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("bad id: %v", err)
	}
	id := uuid.Must(uuid.NewV4())
	got, err := parseIDFlag(id.String())
	if err != nil || got != id {
		t.Fatalf("parseIDFlag: %v %v", got, err)
	}
}

func Test_download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/blobs/ok.png" {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png-bytes"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "a.png")
	n, err := download(context.Background(), srv.URL+"/blobs/ok.png", out)
	if err != nil || n != int64(len("png-bytes")) {
		t.Fatalf("download: n=%d err=%v", n, err)
	}
	b, _ := os.ReadFile(out)
	if string(b) != "png-bytes" {
		t.Fatalf("content mismatch: %q", b)
	}

	missing := filepath.Join(dir, "b.png")
	if _, err := download(context.Background(), srv.URL+"/blobs/gone.png", missing); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if _, err := os.Stat(missing); err == nil {
		t.Fatalf("failed download should not leave a file")
	}
}

func Test_commandsCoverUsage(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"signup", "signin", "signout", "whoami", "list", "get", "add", "edit",
		"attach", "image", "inc", "dec", "adjust", "rm", "stats", "low", "settings", "watch"} {
		if _, ok := commands[name]; !ok {
			t.Fatalf("command %q not registered", name)
		}
	}
}
