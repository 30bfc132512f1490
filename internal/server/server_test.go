package server

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *httptest.Server {
	s := NewServer("test", 0).
		WithOrigins("http://localhost:5173", "http://localhost:5174/").
		Add(Live()).
		Add(Route{
			Path:   "echo",
			Method: POST,
			Exec: func(r *http.Request) ([]byte, int, error) {
				var v map[string]interface{}
				if err := JsonRead(r, true, &v); err != nil {
					return nil, http.StatusBadRequest, err
				}
				b, err := json.Marshal(v)
				return b, http.StatusOK, err
			},
		}, Route{
			Path:   "fail",
			Method: GET,
			Exec: func(r *http.Request) ([]byte, int, error) {
				return nil, 0, fmt.Errorf("boom")
			},
		}).
		Mount("raw", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
	return httptest.NewServer(s.Handler())
}

func detail(t *testing.T, resp *http.Response) string {
	var d Detail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	return d.Detail
}

func TestServer_Routes(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/echo", "application/json", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	b, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	resp, err = http.Post(ts.URL+"/echo", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, detail(t, resp))

	resp, err = http.Get(ts.URL + "/fail")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "boom", detail(t, resp))

	resp, err = http.Get(ts.URL + "/echo")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/live")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/raw")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestServer_Cors(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/echo", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "content-type", resp.Header.Get("Access-Control-Allow-Headers"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")

	req.Header.Set("Origin", "http://evil.com")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodPost, ts.URL+"/echo", strings.NewReader(`{}`))
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5174")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:5174", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_Concurrent(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Post(ts.URL+"/echo", "application/json", strings.NewReader(fmt.Sprintf(`{"i":%d}`, i)))
			if assert.NoError(t, err) {
				defer resp.Body.Close()
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			}
		}(i)
	}
	wg.Wait()
}

func TestServer_RequestID(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/live")
	require.NoError(t, err)
	resp.Body.Close()
	generated := resp.Header.Get(RequestIDHeader)
	assert.NotEmpty(t, generated)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/live", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))

	resp, err = http.Get(ts.URL + "/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, generated, resp.Header.Get(RequestIDHeader))
}
