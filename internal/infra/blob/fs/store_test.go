package fs

import (
	"context"
	"io"
	"strings"
	"testing"

	"neurocore/internal/blob/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestPutGetHeadDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	info, err := s.Put(ctx, "exports/run-1.json", strings.NewReader(`{"ok":true}`), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"devices": "1"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(`{"ok":true}`)) || info.ETag == "" {
		t.Fatalf("put info: %+v", info)
	}

	// Create-only semantics.
	if _, err := s.Put(ctx, "exports/run-1.json", strings.NewReader("x"), core.PutOptions{}); err == nil {
		t.Fatal("duplicate put accepted")
	}

	got, rc, err := s.Get(ctx, "exports/run-1.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"ok":true}` {
		t.Fatalf("body %q", body)
	}
	if got.ContentType != "application/json" || got.Metadata["devices"] != "1" {
		t.Fatalf("get info: %+v", got)
	}

	head, err := s.Head(ctx, "exports/run-1.json")
	if err != nil || head.Size != info.Size {
		t.Fatalf("head: %+v %v", head, err)
	}

	existed, err := s.Delete(ctx, "exports/run-1.json")
	if err != nil || !existed {
		t.Fatalf("delete: %v %v", existed, err)
	}
	existed, err = s.Delete(ctx, "exports/run-1.json")
	if err != nil || existed {
		t.Fatalf("second delete: %v %v", existed, err)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"exports/b.json", "exports/a.json", "other/c.json"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := s.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "exports/a.json" || infos[1].Key != "exports/b.json" {
		t.Fatalf("list result: %+v", infos)
	}
}

func TestKeySanitization(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "../escape", "/absolute"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Errorf("key %q accepted", key)
		}
	}
}

func TestPresignURLGetOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, err := s.PresignURL(ctx, "exports/a.json", core.SignedURLOptions{})
	if err != nil || u == "" {
		t.Fatalf("presign get: %q %v", u, err)
	}
	if _, err := s.PresignURL(ctx, "exports/a.json", core.SignedURLOptions{Method: "PUT"}); err != core.ErrUnsupported {
		t.Fatalf("presign put: %v", err)
	}
}
