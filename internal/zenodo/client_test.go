// SPDX-License-Identifier: MPL-2.0

package zenodo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBaseURL(t *testing.T) {
	if got := BaseURL(true); got != SandboxBaseURL {
		t.Errorf("BaseURL(true) = %q, want sandbox", got)
	}
	if got := BaseURL(false); got != ProductionBaseURL {
		t.Errorf("BaseURL(false) = %q, want production", got)
	}
}

func TestCreateDeposition_Success(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/deposit/depositions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Deposition{
			ID:    42,
			State: "unsubmitted",
			Links: DepositionLinks{Bucket: "https://example.org/api/files/abc"},
		})
	}))
	defer srv.Close()

	client := NewClient("tok-123", false, WithBaseURL(srv.URL))
	dep, err := client.CreateDeposition(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dep.ID != 42 {
		t.Errorf("deposition id = %d, want 42", dep.ID)
	}
	if dep.Links.Bucket == "" {
		t.Error("expected bucket link to be decoded")
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestCreateDeposition_APIErrorWithFields(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"Validation error","status":400,`+
			`"errors":[{"field":"metadata.title","message":"Missing data for required field."}]}`)
	}))
	defer srv.Close()

	client := NewClient("tok", false, WithBaseURL(srv.URL))
	_, err := client.CreateDeposition(context.Background(), map[string]any{"upload_type": "dataset"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.Message != "Validation error" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if len(apiErr.Fields) != 1 || apiErr.Fields[0].Field != "metadata.title" {
		t.Errorf("field errors = %+v", apiErr.Fields)
	}
}

func TestGetDeposition(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/deposit/depositions/7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Deposition{ID: 7, Title: "climate data", Submitted: true})
	}))
	defer srv.Close()

	client := NewClient("tok", false, WithBaseURL(srv.URL))
	dep, err := client.GetDeposition(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dep.Title != "climate data" || !dep.Submitted {
		t.Errorf("unexpected deposition: %+v", dep)
	}
}

func TestUpdateMetadata_SendsWrappedPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		var payload map[string]map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if payload["metadata"]["title"] != "Updated" {
			t.Errorf("payload = %+v, want metadata.title=Updated", payload)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Deposition{ID: 7, Title: "Updated"})
	}))
	defer srv.Close()

	client := NewClient("tok", false, WithBaseURL(srv.URL))
	dep, err := client.UpdateMetadata(context.Background(), 7, map[string]any{"title": "Updated"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dep.Title != "Updated" {
		t.Errorf("title = %q", dep.Title)
	}
}

func TestPublishDeposition(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/deposit/depositions/9/actions/publish" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(Deposition{ID: 9, State: "done", Submitted: true, DOI: "10.5281/zenodo.9"})
	}))
	defer srv.Close()

	client := NewClient("tok", false, WithBaseURL(srv.URL))
	dep, err := client.PublishDeposition(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dep.DOI != "10.5281/zenodo.9" {
		t.Errorf("doi = %q", dep.DOI)
	}
}

func TestDeleteDeposition(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient("tok", false, WithBaseURL(srv.URL))
	if err := client.DeleteDeposition(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteDeposition_PublishedIsForbidden(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"Deleting published depositions is forbidden","status":403}`)
	}))
	defer srv.Close()

	client := NewClient("tok", false, WithBaseURL(srv.URL))
	err := client.DeleteDeposition(context.Background(), 3)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", apiErr.StatusCode)
	}
}

func TestSearch_PassesQueryParameters(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "climate" || q.Get("size") != "5" || q.Get("page") != "2" ||
			q.Get("sort") != "mostrecent" || q.Get("status") != "draft" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Deposition{{ID: 1}, {ID: 2}})
	}))
	defer srv.Close()

	client := NewClient("tok", false, WithBaseURL(srv.URL))
	deps, err := client.Search(context.Background(), SearchOptions{
		Query: "climate", Size: 5, Page: 2, Sort: "mostrecent", Status: "draft",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 2 {
		t.Errorf("got %d depositions, want 2", len(deps))
	}
}

func TestSearch_StatusAllIsOmitted(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("status") {
			t.Error("status=all should not be sent to the API")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Deposition{})
	}))
	defer srv.Close()

	client := NewClient("tok", false, WithBaseURL(srv.URL))
	if _, err := client.Search(context.Background(), SearchOptions{Query: "x", Status: "all"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUploadFile_LocalFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "dataset.csv")
	if err := os.WriteFile(src, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(DepositionFile{Key: "dataset.csv", Size: int64(len(body))})
	}))
	defer srv.Close()

	client := NewClient("tok", false, WithBaseURL(srv.URL))
	file, err := client.UploadFile(context.Background(), srv.URL+"/files/bucket-1", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/files/bucket-1/dataset.csv" {
		t.Errorf("upload path = %q", gotPath)
	}
	if gotBody != "a,b\n1,2\n" {
		t.Errorf("upload body = %q", gotBody)
	}
	if file.Key != "dataset.csv" {
		t.Errorf("file key = %q", file.Key)
	}
}

func TestUploadFile_RemoteSourceGetsNoToken(t *testing.T) {
	t.Parallel()

	// Third-party server holding the source file. It must never see the
	// API token.
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("token leaked to third-party source host")
		}
		_, _ = io.WriteString(w, "remote-content")
	}))
	defer origin.Close()

	var gotAuth, gotPath string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(DepositionFile{Key: "archive.zip"})
	}))
	defer api.Close()

	client := NewClient("tok-secret", false, WithBaseURL(api.URL))
	_, err := client.UploadFile(context.Background(), api.URL+"/files/bkt", origin.URL+"/downloads/archive.zip?sig=abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer tok-secret" {
		t.Errorf("bucket PUT auth = %q, want bearer token", gotAuth)
	}
	if gotPath != "/files/bkt/archive.zip" {
		t.Errorf("upload path = %q, want query string stripped from name", gotPath)
	}
}

func TestDeposit_FullFlow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "results.txt")
	if err := os.WriteFile(src, []byte("42"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	var steps []string
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		steps = append(steps, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/deposit/depositions":
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(Deposition{
				ID:    11,
				Links: DepositionLinks{Bucket: srvURL + "/files/bkt-11"},
			})
		case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/files/bkt-11/"):
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(DepositionFile{Key: "results.txt", Size: 2})
		case r.Method == http.MethodPut && r.URL.Path == "/deposit/depositions/11":
			_ = json.NewEncoder(w).Encode(Deposition{ID: 11, Title: "Results"})
		case r.Method == http.MethodPost && r.URL.Path == "/deposit/depositions/11/actions/publish":
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(Deposition{ID: 11, Submitted: true, DOI: "10.5281/zenodo.11"})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	client := NewClient("tok", true, WithBaseURL(srv.URL))
	dep, err := client.Deposit(context.Background(), DepositRequest{
		Paths:    []string{src},
		Metadata: map[string]any{"title": "Results", "upload_type": "dataset"},
		Publish:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !dep.Submitted {
		t.Error("expected published deposition")
	}

	want := []string{
		"POST /deposit/depositions",
		"PUT /files/bkt-11/results.txt",
		"PUT /deposit/depositions/11",
		"POST /deposit/depositions/11/actions/publish",
	}
	if len(steps) != len(want) {
		t.Fatalf("steps = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step[%d] = %q, want %q", i, steps[i], want[i])
		}
	}
}

func TestDeposit_StopsOnUploadFailure(t *testing.T) {
	t.Parallel()

	var published bool
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/deposit/depositions":
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(Deposition{ID: 5, Links: DepositionLinks{Bucket: srvURL + "/files/b"}})
		case strings.Contains(r.URL.Path, "/actions/publish"):
			published = true
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"message":"boom","status":500}`)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	dir := t.TempDir()
	src := filepath.Join(dir, "f.bin")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	client := NewClient("tok", false, WithBaseURL(srv.URL))
	_, err := client.Deposit(context.Background(), DepositRequest{Paths: []string{src}, Publish: true})
	if err == nil {
		t.Fatal("expected upload failure to abort the flow")
	}
	if published {
		t.Error("publish must not run after a failed upload")
	}
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{
		StatusCode: 400,
		Message:    "Validation error",
		Fields:     []FieldError{{Field: "metadata.title", Message: "Missing data"}},
	}
	got := err.Error()
	if !strings.Contains(got, "400") || !strings.Contains(got, "metadata.title") {
		t.Errorf("unexpected message: %q", got)
	}
}
