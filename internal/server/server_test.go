package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v4"

	"github.com/sanity-io/statement/internal/sample"
	"github.com/sanity-io/statement/internal/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T) *server.Server {
	s, err := server.New(server.Options{
		Address:  server.DefaultAddress,
		Port:     server.DefaultPort,
		Document: sample.Document(),
	})
	require.NoError(t, err)
	return s
}

func do(s *server.Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestOptions(t *testing.T) {
	_, err := server.New(server.Options{Port: "3000", Document: map[string]interface{}{}})
	require.Error(t, err)

	_, err = server.New(server.Options{Address: "127.0.0.1", Document: map[string]interface{}{}})
	require.Error(t, err)

	_, err = server.New(server.Options{Address: "127.0.0.1", Port: "3000"})
	require.Error(t, err)
}

func TestMutateDocument(t *testing.T) {
	s := newServer(t)

	rec := do(s, http.MethodPost, "/document/mutations", `{"posts": [{"_id": 2, "_delete": true}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"$remove": {"posts.0": true}}`, rec.Body.String())

	// The served document keeps the change.
	rec = do(s, http.MethodPost, "/document/mutations", `{"posts": [{"_id": 2, "_delete": true}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "posts.{not_found}")

	rec = do(s, http.MethodGet, "/document", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), `"value":"one"`)
	require.Contains(t, rec.Body.String(), `"value":"two"`)
}

func TestUpdateStatement(t *testing.T) {
	s := newServer(t)

	rec := do(s, http.MethodPost, "/update-statement", `{
		"document": {"posts": [{"_id": 1}, {"_id": 2}]},
		"descriptor": {"posts": [{"value": "x"}]}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{
		"statement": {"$add": {"posts.2": [{"value": "x", "_id": 3}]}},
		"document": {"posts": [{"_id": 1}, {"_id": 2}, {"_id": 3, "value": "x"}]}
	}`, rec.Body.String())

	// The served document is left alone.
	rec = do(s, http.MethodGet, "/document", "")
	require.Contains(t, rec.Body.String(), `"value":"one"`)
}

func TestBadRequests(t *testing.T) {
	s := newServer(t)

	rec := do(s, http.MethodPost, "/document/mutations", `[1, 2`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPost, "/update-statement", `{"descriptor": {}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "document is required")
}

func TestMsgpackResponse(t *testing.T) {
	s := newServer(t)

	rec := do(s, http.MethodPost, "/document/mutations", `{"posts": [{"_id": 2, "value": "too"}]}`, "Accept", "application/msgpack")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/msgpack", rec.Header().Get("Content-Type"))

	var value map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &value))
	require.Equal(t, map[string]interface{}{
		"$update": map[string]interface{}{"posts.0.value": "too"},
	}, value)
}
