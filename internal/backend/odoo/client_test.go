package odoo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.Database = "sprint-db"
	cfg.RatePerSec = 0
	return cfg
}

// rpcServer decodes each call and answers with handle's result or error.
func rpcServer(t *testing.T, handle func(p rpcParams) (any, *rpcError)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jsonrpc", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "call", req.Method)
		assert.NotEmpty(t, req.ID)

		result, rpcErr := handle(req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

var session = backend.Session{UID: 2, Login: "pm@example.com", Password: "pw"}

func TestClient_Authenticate(t *testing.T) {
	srv := rpcServer(t, func(p rpcParams) (any, *rpcError) {
		assert.Equal(t, "common", p.Service)
		assert.Equal(t, "authenticate", p.Method)
		require.Len(t, p.Args, 4)
		assert.Equal(t, "sprint-db", p.Args[0])
		if p.Args[2] == "pw" {
			return 2, nil
		}
		return false, nil
	})
	c := NewClient(testConfig(srv.URL), NoopObserver{})

	s, err := c.Authenticate(context.Background(), backend.Credentials{Login: "pm@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.UID)
	assert.True(t, s.Valid())

	_, err = c.Authenticate(context.Background(), backend.Credentials{Login: "pm@example.com", Password: "nope"})
	assert.ErrorIs(t, err, backend.ErrAuthentication)
}

func TestClient_Authenticate_MissingCredentialsSkipsCall(t *testing.T) {
	called := false
	srv := rpcServer(t, func(p rpcParams) (any, *rpcError) {
		called = true
		return 1, nil
	})
	c := NewClient(testConfig(srv.URL), NoopObserver{})

	_, err := c.Authenticate(context.Background(), backend.Credentials{Login: "pm"})
	assert.ErrorIs(t, err, backend.ErrAuthentication)
	assert.False(t, called)
}

func TestClient_SearchEncodesDomain(t *testing.T) {
	srv := rpcServer(t, func(p rpcParams) (any, *rpcError) {
		assert.Equal(t, "object", p.Service)
		assert.Equal(t, "execute_kw", p.Method)
		require.Len(t, p.Args, 7)
		assert.Equal(t, "project.task", p.Args[3])
		assert.Equal(t, "search", p.Args[4])

		domain := p.Args[5].([]any)[0].([]any)
		require.Len(t, domain, 2)
		assert.Equal(t, []any{"project_id", "=", float64(9)}, domain[0])
		assert.Equal(t, []any{"parent_id", "=", false}, domain[1])
		return []int64{4, 5}, nil
	})
	c := NewClient(testConfig(srv.URL), NoopObserver{})

	ids, err := c.Search(context.Background(), session, backend.KindTask, backend.Filter{
		backend.Eq(backend.FieldTaskProject, int64(9)),
		backend.Eq(backend.FieldTaskParent, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, ids)
}

func TestClient_SearchRejectsSchemaViolationLocally(t *testing.T) {
	c := NewClient(testConfig("http://127.0.0.1:1"), NoopObserver{})
	_, err := c.Search(context.Background(), session, backend.KindTag, backend.Filter{backend.Eq("colour", int64(1))})
	assert.ErrorIs(t, err, backend.ErrSchema)
}

func TestClient_ReadDecodesRecords(t *testing.T) {
	srv := rpcServer(t, func(p rpcParams) (any, *rpcError) {
		assert.Equal(t, "read", p.Args[4])
		kwargs := p.Args[6].(map[string]any)
		assert.Equal(t, []any{"id", "name", "parent_id", "tag_ids"}, kwargs["fields"])
		return []map[string]any{
			{"id": 4, "name": "T1", "parent_id": false, "tag_ids": []int{7, 8}},
			{"id": 5, "name": "s1", "parent_id": []any{4, "T1"}, "tag_ids": []int{}},
		}, nil
	})
	c := NewClient(testConfig(srv.URL), NoopObserver{})

	recs, err := c.Read(context.Background(), session, backend.KindTask, []int64{4, 5},
		[]backend.Field{backend.FieldID, backend.FieldName, backend.FieldTaskParent, backend.FieldTaskTags})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, int64(4), recs[0].ID())
	assert.Nil(t, recs[0].Ref(backend.FieldTaskParent))
	assert.Equal(t, []int64{7, 8}, recs[0].IDs(backend.FieldTaskTags))

	parent := recs[1].Ref(backend.FieldTaskParent)
	require.NotNil(t, parent)
	assert.Equal(t, int64(4), parent.ID)
	assert.Equal(t, "T1", parent.Name)
	assert.Empty(t, recs[1].IDs(backend.FieldTaskTags))
}

func TestClient_CreateEncodesRefSet(t *testing.T) {
	srv := rpcServer(t, func(p rpcParams) (any, *rpcError) {
		assert.Equal(t, "create", p.Args[4])
		vals := p.Args[5].([]any)[0].(map[string]any)
		assert.Equal(t, "T1", vals["name"])
		assert.Equal(t, []any{[]any{float64(6), float64(0), []any{float64(3), float64(1)}}}, vals["tag_ids"])
		return 42, nil
	})
	c := NewClient(testConfig(srv.URL), NoopObserver{})

	id, err := c.Create(context.Background(), session, backend.KindTask, backend.Values{
		backend.FieldName:        "T1",
		backend.FieldTaskProject: int64(9),
		backend.FieldTaskTags:    backend.RefSet{3, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestClient_CreateRejectsNonIntegerID(t *testing.T) {
	srv := rpcServer(t, func(p rpcParams) (any, *rpcError) {
		return 4.5, nil
	})
	c := NewClient(testConfig(srv.URL), NoopObserver{})

	_, err := c.Create(context.Background(), session, backend.KindTag, backend.Values{backend.FieldName: "x"})
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}

func TestClient_RequiresSession(t *testing.T) {
	c := NewClient(testConfig("http://127.0.0.1:1"), NoopObserver{})
	_, err := c.Search(context.Background(), backend.Session{}, backend.KindTag, nil)
	assert.ErrorIs(t, err, backend.ErrAuthentication)
}

func TestClient_RemoteFaults(t *testing.T) {
	srv := rpcServer(t, func(p rpcParams) (any, *rpcError) {
		e := &rpcError{Code: 200, Message: "Odoo Server Error"}
		if p.Args[4] == "unlink" {
			e.Data.Name = "odoo.exceptions.AccessDenied"
			e.Data.Message = "Access Denied"
		} else {
			e.Data.Name = "odoo.exceptions.ValidationError"
			e.Data.Message = "name is required"
		}
		return nil, e
	})
	c := NewClient(testConfig(srv.URL), NoopObserver{})

	_, err := c.Unlink(context.Background(), session, backend.KindTask, []int64{1})
	assert.ErrorIs(t, err, backend.ErrAuthentication)

	_, err = c.Create(context.Background(), session, backend.KindTag, backend.Values{backend.FieldName: "x"})
	var remote *backend.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "name is required", remote.Message)
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}

func TestClient_Unavailable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1") // nothing listening
	cfg.MaxRetries = 0
	c := NewClient(cfg, NoopObserver{})

	_, err := c.Search(context.Background(), session, backend.KindTag, nil)
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.TimeoutMs = 50
	cfg.MaxRetries = 0
	c := NewClient(cfg, NoopObserver{})

	_, err := c.Search(context.Background(), session, backend.KindTag, nil)
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}

func TestClient_RetriesReadsButNotCreates(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 || attempts == 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": []int{1}})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 1
	c := NewClient(cfg, NoopObserver{})

	ids, err := c.Search(context.Background(), session, backend.KindTag, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
	assert.Equal(t, 2, attempts)

	_, err = c.Create(context.Background(), session, backend.KindTag, backend.Values{backend.FieldName: "x"})
	assert.ErrorIs(t, err, backend.ErrUnavailable)
	assert.Equal(t, 3, attempts)
}

type recordingObserver struct{ events []CallEvent }

func (o *recordingObserver) OnCallComplete(e CallEvent) { o.events = append(o.events, e) }

func TestClient_ReportsCallEvents(t *testing.T) {
	srv := rpcServer(t, func(p rpcParams) (any, *rpcError) { return []int{}, nil })
	obs := &recordingObserver{}
	c := NewClient(testConfig(srv.URL), obs)

	_, err := c.Search(context.Background(), session, backend.KindUser, backend.Filter{backend.Eq(backend.FieldUserLogin, "x")})
	require.NoError(t, err)
	require.Len(t, obs.events, 1)
	assert.Equal(t, "res.users", obs.events[0].Model)
	assert.Equal(t, "search", obs.events[0].Method)
	assert.True(t, obs.events[0].Success)
}
