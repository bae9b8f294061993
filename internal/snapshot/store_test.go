package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const noSuchKey = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message><Key>platform/openapi.yaml</Key><BucketName>contracts</BucketName><Resource>/contracts/platform/openapi.yaml</Resource><RequestId>1</RequestId><HostId>1</HostId></Error>`

// fakeS3 answers the handful of path-style S3 calls ObjectStore makes.
type fakeS3 struct {
	mu     sync.Mutex
	object []byte
	puts   []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		_, _ = io.Copy(io.Discard, r.Body)
		f.puts = append(f.puts, r.URL.Path)
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		if f.object == nil {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, noSuchKey)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Content-Length", fmt.Sprint(len(f.object)))
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(f.object)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func objectStore(t *testing.T, h http.Handler) *ObjectStore {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := S3Config{Endpoint: strings.TrimPrefix(srv.URL, "http://"), AccessKey: "a", SecretKey: "b"}
	s, err := NewObjectStore("s3://contracts/platform/openapi.yaml", cfg)
	if err != nil {
		t.Fatalf("object store: %v", err)
	}
	return s
}

func TestObjectStore_LoadMissingKey(t *testing.T) {
	t.Parallel()
	s := objectStore(t, &fakeS3{})

	_, err := s.Load(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestObjectStore_Load(t *testing.T) {
	t.Parallel()
	s := objectStore(t, &fakeS3{object: []byte(petsV3)})

	data, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != petsV3 {
		t.Fatalf("load returned %q", data)
	}
}

func TestObjectStore_Save(t *testing.T) {
	t.Parallel()
	fake := &fakeS3{}
	s := objectStore(t, fake)

	if err := s.Save(context.Background(), []byte(petsV3)); err != nil {
		t.Fatalf("save: %v", err)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.puts) != 1 || fake.puts[0] != "/contracts/platform/openapi.yaml" {
		t.Fatalf("puts = %v", fake.puts)
	}
}

func TestManager_ReadFromObjectStoreNotFound(t *testing.T) {
	t.Parallel()
	m := fastManager(objectStore(t, &fakeS3{}), "")

	_, err := m.Read(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
