package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"todo/internal/backend/rest"
	"todo/internal/categories"
	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/testutil"
)

func newClient(t *testing.T, backend *testutil.FakeBackend) (*rest.Client, *categories.Map) {
	t.Helper()
	cats := categories.New(filepath.Join(t.TempDir(), "categories.json"))
	require.NoError(t, cats.Load())
	client, err := rest.NewWithOptions(rest.Options{
		BaseURL:    backend.URL(),
		Categories: cats,
	})
	require.NoError(t, err)
	return client, cats
}

func strPtr(s string) *string { return &s }

func TestListTodos_OverviewGetsAll(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.AddTodo(service.Todo{Content: "a", ListType: "小家"})
	backend.AddTodo(service.Todo{Content: "b", ListType: "蒙der"})
	client, _ := newClient(t, backend)

	todos, err := client.ListTodos(context.Background(), service.Overview)
	require.NoError(t, err)
	if len(todos) != 2 {
		t.Errorf("expected 2 todos, got %d", len(todos))
	}

	req := backend.LastRequest(t)
	if req.Method != http.MethodGet || req.URI != "/api/todos" {
		t.Errorf("expected GET /api/todos, got %s %s", req.Method, req.URI)
	}
}

func TestListTodos_ByCategoryIsPercentEncoded(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.AddTodo(service.Todo{Content: "ship it", ListType: "ACME Corp"})
	backend.AddTodo(service.Todo{Content: "other", ListType: "小家"})
	client, cats := newClient(t, backend)

	require.NoError(t, cats.Add("acme", "ACME Corp"))
	todos, err := client.ListTodos(context.Background(), "acme")
	require.NoError(t, err)

	req := backend.LastRequest(t)
	if req.URI != "/api/todos/type/ACME%20Corp" {
		t.Errorf("expected /api/todos/type/ACME%%20Corp, got %s", req.URI)
	}
	if len(todos) != 1 || todos[0].Content != "ship it" {
		t.Errorf("expected only the ACME todo, got %+v", todos)
	}
}

func TestListTodos_NonASCIILabel(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.AddTodo(service.Todo{Content: "wash", ListType: "小家"})
	client, _ := newClient(t, backend)

	todos, err := client.ListTodos(context.Background(), "xiaojia")
	require.NoError(t, err)
	if req := backend.LastRequest(t); req.URI != "/api/todos/type/%E5%B0%8F%E5%AE%B6" {
		t.Errorf("unexpected uri %s", req.URI)
	}
	if len(todos) != 1 {
		t.Errorf("expected 1 todo, got %d", len(todos))
	}
}

func TestListTodos_ReservedCharactersEscaped(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.AddTodo(service.Todo{Content: "budget", ListType: "R&D+Ops"})
	client, cats := newClient(t, backend)

	require.NoError(t, cats.Add("rd", "R&D+Ops"))
	todos, err := client.ListTodos(context.Background(), "rd")
	require.NoError(t, err)
	if req := backend.LastRequest(t); req.URI != "/api/todos/type/R%26D%2BOps" {
		t.Errorf("expected /api/todos/type/R%%26D%%2BOps, got %s", req.URI)
	}
	if len(todos) != 1 || todos[0].Content != "budget" {
		t.Errorf("expected the R&D+Ops todo, got %+v", todos)
	}

	require.NoError(t, cats.Add("misc", "a/b $,:;=@ (x)!~*'"))
	_, err = client.ListTodos(context.Background(), "misc")
	require.NoError(t, err)
	want := "/api/todos/type/a%2Fb%20%24%2C%3A%3B%3D%40%20(x)!~*'"
	if req := backend.LastRequest(t); req.URI != want {
		t.Errorf("expected %s, got %s", want, req.URI)
	}
}

func TestListTodos_UnknownListIsUsageError(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client, _ := newClient(t, backend)

	_, err := client.ListTodos(context.Background(), "nope")
	var ue *service.UsageError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UsageError, got %v", err)
	}
	if len(backend.Requests()) != 0 {
		t.Error("expected no request for unknown list")
	}
}

func TestCreateTodo_OverviewFailsBeforeRequest(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client, _ := newClient(t, backend)

	_, err := client.CreateTodo(context.Background(), "anything", service.Overview)
	var ue *service.UsageError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UsageError, got %v", err)
	}
	if ue.ListID != service.Overview {
		t.Errorf("expected list id overview, got %q", ue.ListID)
	}
	if n := len(backend.Requests()); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestCreateTodo_Body(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client, _ := newClient(t, backend)

	todo, err := client.CreateTodo(context.Background(), "buy milk", "mengder")
	require.NoError(t, err)
	if todo.ID == "" || todo.Content != "buy milk" {
		t.Errorf("unexpected created todo %+v", todo)
	}

	req := backend.LastRequest(t)
	if req.Method != http.MethodPost || req.URI != "/api/todos" {
		t.Errorf("expected POST /api/todos, got %s %s", req.Method, req.URI)
	}
	want := map[string]any{
		"content":  "buy milk",
		"listType": "蒙der",
		"creator":  "张三",
		"isRepeat": false,
	}
	if diff := cmp.Diff(want, req.Body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestCreators_CreateAndReplaceDiffer(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client, _ := newClient(t, backend)

	todo, err := client.CreateTodo(context.Background(), "x", "xiaojia")
	require.NoError(t, err)
	if got := backend.LastRequest(t).Body["creator"]; got != config.DefaultCreateCreator {
		t.Errorf("expected create creator %q, got %v", config.DefaultCreateCreator, got)
	}

	_, err = client.UpdateTodo(context.Background(), string(todo.ID), service.Update{Content: strPtr("y"), Status: "pending"})
	require.NoError(t, err)
	if got := backend.LastRequest(t).Body["creator"]; got != config.DefaultUpdateCreator {
		t.Errorf("expected update creator %q, got %v", config.DefaultUpdateCreator, got)
	}

	custom, err := rest.NewWithOptions(rest.Options{
		BaseURL:       backend.URL(),
		CreateCreator: "alice",
		UpdateCreator: "bob",
	})
	require.NoError(t, err)
	todo, err = custom.CreateTodo(context.Background(), "z", "mengder")
	require.NoError(t, err)
	if got := backend.LastRequest(t).Body["creator"]; got != "alice" {
		t.Errorf("expected configured create creator alice, got %v", got)
	}
	_, err = custom.UpdateTodo(context.Background(), string(todo.ID), service.Update{Content: strPtr("w"), Status: "pending"})
	require.NoError(t, err)
	if got := backend.LastRequest(t).Body["creator"]; got != "bob" {
		t.Errorf("expected configured update creator bob, got %v", got)
	}
}

func TestCreateTodo_Headers(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client, _ := newClient(t, backend)

	_, err := client.CreateTodo(context.Background(), "x", "xiaojia")
	require.NoError(t, err)

	req := backend.LastRequest(t)
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("expected JSON content type, got %q", got)
	}
	if got := req.Header.Get("Accept"); got != "application/json" {
		t.Errorf("expected JSON accept, got %q", got)
	}
	if req.Header.Get(rest.RequestIDHeader) == "" {
		t.Error("expected request id header")
	}
}

func TestUpdateTodo_PartialSendsStatusAndRepeatOnly(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	id := backend.AddTodo(service.Todo{Content: "a", Status: "pending", IsRepeat: true})
	client, _ := newClient(t, backend)

	todo, err := client.UpdateTodo(context.Background(), id, service.Update{Status: "done", IsRepeat: true})
	require.NoError(t, err)

	req := backend.LastRequest(t)
	if req.Method != http.MethodPut || req.URI != "/api/todos/"+id {
		t.Errorf("expected PUT /api/todos/%s, got %s %s", id, req.Method, req.URI)
	}
	want := map[string]any{"status": "done", "isRepeat": true}
	if diff := cmp.Diff(want, req.Body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if !todo.IsRepeat {
		t.Error("expected isRepeat to survive the partial update")
	}
}

func TestUpdateTodo_EmptyContentIsPartial(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	id := backend.AddTodo(service.Todo{Content: "a"})
	client, _ := newClient(t, backend)

	_, err := client.UpdateTodo(context.Background(), id, service.Update{Content: strPtr(""), Status: "done"})
	require.NoError(t, err)

	want := map[string]any{"status": "done", "isRepeat": false}
	if diff := cmp.Diff(want, backend.LastRequest(t).Body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateTodo_FullReplacement(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	id := backend.AddTodo(service.Todo{Content: "old", Status: "pending"})
	client, _ := newClient(t, backend)

	todo, err := client.UpdateTodo(context.Background(), id, service.Update{
		Content:  strPtr("new"),
		Status:   "pending",
		IsRepeat: false,
	})
	require.NoError(t, err)

	want := map[string]any{
		"content":  "new",
		"status":   "pending",
		"creator":  "zyh",
		"isRepeat": false,
	}
	if diff := cmp.Diff(want, backend.LastRequest(t).Body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if todo.Content != "new" {
		t.Errorf("expected content new, got %q", todo.Content)
	}
}

func TestToggleRepeat_Body(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	id := backend.AddTodo(service.Todo{Content: "a", Status: "open"})
	client, _ := newClient(t, backend)

	todo, err := client.ToggleRepeat(context.Background(), id, false, "open")
	require.NoError(t, err)

	want := map[string]any{"isRepeat": true, "status": "open"}
	if diff := cmp.Diff(want, backend.LastRequest(t).Body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if !todo.IsRepeat || todo.Status != "open" {
		t.Errorf("unexpected todo after toggle: %+v", todo)
	}
}

func TestGetAndDeleteTodo(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	id := backend.AddTodo(service.Todo{Content: "a", Status: "pending", Creator: "bob"})
	client, _ := newClient(t, backend)
	ctx := context.Background()

	todo, err := client.GetTodo(ctx, id)
	require.NoError(t, err)
	if todo.Creator != "bob" || string(todo.ID) != id {
		t.Errorf("unexpected todo %+v", todo)
	}

	require.NoError(t, client.DeleteTodo(ctx, id))
	req := backend.LastRequest(t)
	if req.Method != http.MethodDelete || req.URI != "/api/todos/"+id {
		t.Errorf("expected DELETE /api/todos/%s, got %s %s", id, req.Method, req.URI)
	}
	if _, ok := backend.Todo(id); ok {
		t.Error("expected todo to be deleted")
	}
}

func TestBackendError_NotFound(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client, _ := newClient(t, backend)

	_, err := client.GetTodo(context.Background(), "999")
	var be *service.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BackendError, got %v", err)
	}
	if be.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", be.StatusCode)
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected wrapped *googleapi.Error, got %v", be.Err)
	}
	if gerr.Message != "todo not found" {
		t.Errorf("expected decoded message, got %q", gerr.Message)
	}
}

func TestBackendError_ServerFailure(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.FailWith(http.StatusInternalServerError)
	client, _ := newClient(t, backend)

	_, err := client.ListTodos(context.Background(), service.Overview)
	if got := service.StatusCode(err); got != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d (%v)", got, err)
	}
	if n := len(backend.Requests()); n != 1 {
		t.Errorf("expected exactly one request (no retry), got %d", n)
	}
}

func TestTransportError_Timeout(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.SetDelay(500 * time.Millisecond)
	cats := categories.New("")
	client, err := rest.NewWithOptions(rest.Options{
		BaseURL:    backend.URL(),
		Timeout:    50 * time.Millisecond,
		Categories: cats,
	})
	require.NoError(t, err)

	_, err = client.ListTodos(context.Background(), service.Overview)
	var te *service.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timed out message, got %q", err)
	}
}

func TestTransportError_ConnectionRefused(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	url := backend.URL()
	backend.Server.Close()

	client, err := rest.NewWithOptions(rest.Options{BaseURL: url})
	require.NoError(t, err)

	_, err = client.GetTodo(context.Background(), "1")
	var te *service.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
}

func TestNewWithOptions_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"", "   ", "not a url", "/api"} {
		if _, err := rest.NewWithOptions(rest.Options{BaseURL: base}); err == nil {
			t.Errorf("expected error for base url %q", base)
		}
	}
}

func TestNewWithOptions_TrailingSlash(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client, err := rest.NewWithOptions(rest.Options{BaseURL: backend.URL() + "/"})
	require.NoError(t, err)

	_, err = client.ListTodos(context.Background(), service.Overview)
	require.NoError(t, err)
	if req := backend.LastRequest(t); req.URI != "/api/todos" {
		t.Errorf("expected /api/todos, got %s", req.URI)
	}
}

func TestCategories_AddAndRemove(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client, cats := newClient(t, backend)

	require.NoError(t, client.AddCategory("acme", "ACME Corp"))
	if got, _ := cats.Resolve("acme"); got != "ACME Corp" {
		t.Errorf("expected ACME Corp, got %q", got)
	}

	var found bool
	for _, c := range client.ListCategories() {
		if c.ID == "acme" {
			found = true
			if c.BuiltIn {
				t.Error("acme is not built-in")
			}
		}
		if c.ID == "xiaojia" && !c.BuiltIn {
			t.Error("xiaojia is built-in")
		}
	}
	if !found {
		t.Error("expected acme in ListCategories")
	}

	require.NoError(t, client.RemoveCategory("acme"))
	if _, ok := cats.Resolve("acme"); ok {
		t.Error("expected acme removed")
	}
}

func TestCategories_AddRejectsReservedAndEmpty(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client, _ := newClient(t, backend)

	cases := [][2]string{
		{service.Overview, "All"},
		{"", "Label"},
		{"acme", "  "},
	}
	for _, c := range cases {
		if err := client.AddCategory(c[0], c[1]); !service.IsUsage(err) {
			t.Errorf("AddCategory(%q, %q): expected usage error, got %v", c[0], c[1], err)
		}
	}
}

func TestNew_FromConfigWithToken(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	dir := t.TempDir()

	token := oauth2.Token{AccessToken: "secret", TokenType: "Bearer"}
	data, err := json.Marshal(token)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.TokenFile), data, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.CategoriesFile), []byte(`{"acme":"ACME Corp"}`), 0600))

	cfg := &config.Config{Dir: dir, BaseURL: backend.URL(), Timeout: time.Second}
	var logBuf bytes.Buffer
	client, err := rest.New(context.Background(), cfg, logging.New(&logBuf, true))
	require.NoError(t, err)

	_, err = client.ListTodos(context.Background(), "acme")
	require.NoError(t, err)

	req := backend.LastRequest(t)
	if got := req.Header.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", got)
	}
	if req.URI != "/api/todos/type/ACME%20Corp" {
		t.Errorf("expected persisted category to be loaded, got %s", req.URI)
	}
	if !strings.Contains(logBuf.String(), "categories loaded") || !strings.Contains(logBuf.String(), "count=4") {
		t.Errorf("expected categories debug log, got %q", logBuf.String())
	}
	if !strings.Contains(logBuf.String(), "status=200") {
		t.Errorf("expected debug request log, got %q", logBuf.String())
	}
}

func TestNew_FromConfigWithoutToken(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	cfg := &config.Config{Dir: t.TempDir(), BaseURL: backend.URL()}
	client, err := rest.New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	_, err = client.ListTodos(context.Background(), service.Overview)
	require.NoError(t, err)
	if got := backend.LastRequest(t).Header.Get("Authorization"); got != "" {
		t.Errorf("expected no auth header, got %q", got)
	}
}

func TestLoadToken_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.json")

	if _, err := rest.LoadToken(path); err == nil {
		t.Error("expected error for missing token")
	}
	require.NoError(t, os.WriteFile(path, []byte(`{"token_type":"Bearer"}`), 0600))
	if _, err := rest.LoadToken(path); err == nil {
		t.Error("expected error for empty access token")
	}
	require.NoError(t, os.WriteFile(path, []byte(`nope`), 0600))
	if _, err := rest.LoadToken(path); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestClient_ConcurrentCalls(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client, _ := newClient(t, backend)

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := client.CreateTodo(context.Background(), "parallel", "xiaojia")
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-errs)
	}
	todos, err := client.ListTodos(context.Background(), "xiaojia")
	require.NoError(t, err)
	if len(todos) != 8 {
		t.Errorf("expected 8 todos, got %d", len(todos))
	}
}
