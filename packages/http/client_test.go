package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// countingServer records how many requests reached it.
func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestDispatcher_Get(t *testing.T) {
	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "", r.URL.RawQuery)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": []}`))
	})

	d := NewDispatcher()
	body, err := d.DoRequest(context.Background(), "GET", server.URL+"/items", "Accept: application/json\n", "")

	require.NoError(t, err)
	assert.Equal(t, `{"items": []}`, body)
}

func TestDispatcher_QueryParams(t *testing.T) {
	for _, method := range []string{"GET", "DELETE"} {
		t.Run(method, func(t *testing.T) {
			server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, method, r.Method)
				assert.Equal(t, "b=2&a=1&a=3", r.URL.RawQuery)
				assert.Equal(t, []string{"1", "3"}, r.URL.Query()["a"])
				body, _ := io.ReadAll(r.Body)
				assert.Empty(t, body)
				w.WriteHeader(http.StatusNoContent)
			})

			resp, err := NewDispatcher().Dispatch(context.Background(), Intent{
				Method:  method,
				URL:     server.URL,
				RawBody: "b=2&a=1&a=3",
			})

			require.NoError(t, err)
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)
			assert.Empty(t, resp.Body)
		})
	}
}

func TestDispatcher_PostJSON(t *testing.T) {
	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json;charset=UTF-8", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name": "test", "ids": [1, 2]}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 123}`))
	})

	body, err := NewDispatcher().DoRequest(context.Background(), "POST", server.URL,
		"Content-Type: application/json;charset=UTF-8\n", `{"name": "test", "ids": [1, 2]}`)

	require.NoError(t, err)
	assert.Equal(t, `{"id": 123}`, body)
}

func TestDispatcher_PostJSONWithoutBody(t *testing.T) {
	server, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)
		_, _ = w.Write([]byte("ok"))
	})

	body, err := NewDispatcher().DoRequest(context.Background(), "POST", server.URL, "Content-Type: application/json", "")

	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDispatcher_PutForm(t *testing.T) {
	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "John Doe", r.PostForm.Get("name"))
		assert.Equal(t, []string{"a", "b"}, r.PostForm["tag"])
		_, _ = w.Write([]byte("updated"))
	})

	body, err := NewDispatcher().DoRequest(context.Background(), "PUT", server.URL,
		"Content-Type: application/x-www-form-urlencoded", "name=John%20Doe&tag=a&tag=b")

	require.NoError(t, err)
	assert.Equal(t, "updated", body)
}

func TestDispatcher_PatchRaw(t *testing.T) {
	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PATCH", r.Method)
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "line one\nline two", string(body))
		_, _ = w.Write([]byte("patched"))
	})

	body, err := NewDispatcher().DoRequest(context.Background(), "PATCH", server.URL,
		"Content-Type: text/plain", "line one\nline two")

	require.NoError(t, err)
	assert.Equal(t, "patched", body)
}

func TestDispatcher_Multipart(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "test.txt", "file content")

	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data; boundary=")
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "test.txt", header.Filename)
		assert.Equal(t, "file content", string(content))
		_, _ = w.Write([]byte("uploaded"))
	})

	d := NewDispatcher(WithDefaultHeader("Content-Type", "application/json"))
	body, err := d.DoRequest(context.Background(), "POST", server.URL, "Content-Type: multipart/form-data\n", "file="+path)

	require.NoError(t, err)
	assert.Equal(t, "uploaded", body)
}

func TestDispatcher_ErrorStatusIsNotAFailure(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(http.StatusText(status)))
		})

		resp, err := NewDispatcher().Dispatch(context.Background(), Intent{Method: "GET", URL: server.URL})

		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode)
		assert.Equal(t, http.StatusText(status), resp.BodyString())
	}
}

func TestDispatcher_RejectsBeforeSending(t *testing.T) {
	server, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		intent Intent
		want   ErrorKind
	}{
		{
			name:   "invalid json",
			intent: Intent{Method: "POST", URL: server.URL, RawHeaders: "Content-Type: application/json\n", RawBody: "{bad json"},
			want:   KindInvalidJSON,
		},
		{
			name:   "missing content type",
			intent: Intent{Method: "POST", URL: server.URL, RawHeaders: "Accept: */*", RawBody: "hello"},
			want:   KindMissingContentType,
		},
		{
			name:   "empty form body",
			intent: Intent{Method: "PUT", URL: server.URL, RawHeaders: "Content-Type: application/x-www-form-urlencoded"},
			want:   KindEmptyBody,
		},
		{
			name:   "missing attachment",
			intent: Intent{Method: "POST", URL: server.URL, RawHeaders: "Content-Type: multipart/form-data\n", RawBody: "file=/no/such/path"},
			want:   KindFileNotFound,
		},
		{
			name:   "malformed header",
			intent: Intent{Method: "GET", URL: server.URL, RawHeaders: "Accept"},
			want:   KindMalformedHeader,
		},
		{
			name:   "malformed query",
			intent: Intent{Method: "DELETE", URL: server.URL, RawBody: "id"},
			want:   KindMalformedParam,
		},
		{
			name:   "unsupported method",
			intent: Intent{Method: "TRACE", URL: server.URL},
			want:   KindUnsupportedMethod,
		},
		{
			name:   "lowercase method",
			intent: Intent{Method: "get", URL: server.URL},
			want:   KindUnsupportedMethod,
		},
		{
			name:   "unsupported scheme",
			intent: Intent{Method: "GET", URL: "ftp://example.test/file"},
			want:   KindInvalidURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := NewDispatcher().Dispatch(context.Background(), tt.intent)

			assert.Nil(t, resp)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}

	assert.Equal(t, int32(0), hits.Load())
}

func TestDispatcher_UnsupportedMethodMessage(t *testing.T) {
	_, err := DoRequest(context.Background(), "TRACE", "https://example.test", "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRACE")
}

func TestDispatcher_Unreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, err = NewDispatcher(WithTimeout(2*time.Second)).DoRequest(context.Background(), "GET", "http://"+addr+"/", "", "")

	require.Error(t, err)
	assert.Equal(t, KindConnect, KindOf(err))
	assert.Equal(t, "network unreachable", err.Error())
}

func TestDispatcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(WithTimeout(50 * time.Millisecond))
	_, err := d.DoRequest(context.Background(), "GET", server.URL, "", "")

	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Equal(t, "request timed out", err.Error())
}

func TestDispatcher_SameIntentSameOutcome(t *testing.T) {
	server, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("stable"))
	})
	intent := Intent{Method: "GET", URL: server.URL, RawHeaders: "Accept: text/plain"}
	d := NewDispatcher()

	first, err1 := d.Dispatch(context.Background(), intent)
	second, err2 := d.Dispatch(context.Background(), intent)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first.BodyString(), second.BodyString())
	assert.Equal(t, first.StatusCode, second.StatusCode)
	assert.Equal(t, int32(2), hits.Load())
}

func TestDispatcher_Concurrent(t *testing.T) {
	server, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Query().Get("n")))
	})
	d := NewDispatcher()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			input := "n=" + string(rune('a'+n))
			body, err := d.DoRequest(context.Background(), "GET", server.URL, "", input)
			assert.NoError(t, err)
			assert.Equal(t, string(rune('a'+n)), body)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(20), hits.Load())
}

func TestDispatcher_DefaultHeaders(t *testing.T) {
	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "token-override", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})

	d := NewDispatcher(WithDefaultHeaders(map[string]string{
		"authorization": "token-default",
		"User-Agent":    "custom-agent",
	}))
	_, err := d.DoRequest(context.Background(), "GET", server.URL, "Authorization: token-override", "")

	require.NoError(t, err)
}

func TestDispatcher_HeaderValuesLoseSpaces(t *testing.T) {
	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Beareroverride", r.Header.Get("Authorization"))
		assert.Equal(t, "a,b", r.Header.Get("X-List"))
		w.WriteHeader(http.StatusOK)
	})

	_, err := NewDispatcher().DoRequest(context.Background(), "GET", server.URL, "Authorization: Bearer override\r\nX-List: a, b", "")

	require.NoError(t, err)
}

func TestDispatcher_FollowRedirects(t *testing.T) {
	redirectCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`final`))
			return
		}
		redirectCount++
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	resp, err := NewDispatcher(WithFollowRedirects(true)).Dispatch(context.Background(), Intent{Method: "GET", URL: server.URL + "/redirect"})

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "final", resp.BodyString())
	assert.Equal(t, 1, redirectCount)
}

func TestDispatcher_NoFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	resp, err := NewDispatcher(WithFollowRedirects(false)).Dispatch(context.Background(), Intent{Method: "GET", URL: server.URL + "/redirect"})

	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
}

func TestDispatcher_MaxRedirects(t *testing.T) {
	redirectCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		redirectCount++
		http.Redirect(w, r, "/redirect", http.StatusFound)
	}))
	defer server.Close()

	resp, err := NewDispatcher(WithMaxRedirects(3)).Dispatch(context.Background(), Intent{Method: "GET", URL: server.URL + "/redirect"})

	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
	assert.LessOrEqual(t, redirectCount, 4)
}

func TestDispatcher_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	d := NewDispatcher(WithLogger(zap.New(core)))
	_, err := d.DoRequest(context.Background(), "GET", server.URL, "", "")
	require.NoError(t, err)
	_, err = d.DoRequest(context.Background(), "TRACE", server.URL, "", "")
	require.Error(t, err)

	assert.Equal(t, 1, logs.FilterMessage("dispatching request").Len())
	assert.Equal(t, 1, logs.FilterMessage("request completed").Len())
	rejected := logs.FilterMessage("request rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, "unsupported request method", rejected[0].ContextMap()["kind"])
	assert.NotEmpty(t, rejected[0].ContextMap()["request_id"])
}
