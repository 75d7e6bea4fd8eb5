package schemaregistry

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIsSchemaActive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/schemas/schema1":
			_, _ = w.Write([]byte(`{"id":"schema1","active":true}`))
		case "/api/v1/schemas/schema2":
			_, _ = w.Write([]byte(`{"id":"schema2","active":false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)

	active, err := c.IsSchemaActive(context.Background(), "schema1")
	if err != nil || !active {
		t.Fatalf("schema1: active=%v err=%v", active, err)
	}
	active, err = c.IsSchemaActive(context.Background(), "schema2")
	if err != nil || active {
		t.Fatalf("schema2: active=%v err=%v", active, err)
	}
	// An unknown schema is simply inactive.
	active, err = c.IsSchemaActive(context.Background(), "missing")
	if err != nil || active {
		t.Fatalf("missing: active=%v err=%v", active, err)
	}
}

func TestGameSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/games/game1/schema" {
			_, _ = w.Write([]byte(`{"schema_id":"schema1"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)

	schemaID, err := c.GameSchema(context.Background(), "game1")
	if err != nil || schemaID != "schema1" {
		t.Fatalf("bound game: schema=%q err=%v", schemaID, err)
	}
	schemaID, err = c.GameSchema(context.Background(), "unbound")
	if err != nil || schemaID != "" {
		t.Fatalf("unbound game: schema=%q err=%v", schemaID, err)
	}
}

func TestValidate(t *testing.T) {
	payload := []byte(`{"mvp":"alice"}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/validate") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req struct {
			Payload string `json:"payload"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		raw, _ := base64.StdEncoding.DecodeString(req.Payload)
		if string(raw) == string(payload) {
			_, _ = w.Write([]byte(`{"valid":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"valid":false,"error":"field count mismatch"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)

	if err := c.Validate(context.Background(), "schema1", payload); err != nil {
		t.Fatalf("conformant payload: %v", err)
	}
	err := c.Validate(context.Background(), "schema1", []byte(`{}`))
	if err == nil || !strings.Contains(err.Error(), "field count mismatch") {
		t.Fatalf("nonconformant payload: err=%v", err)
	}
}
