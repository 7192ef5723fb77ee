package chat_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finnyai/internal/chat"
	"github.com/MrJamesThe3rd/finnyai/internal/finance"
	chatHandler "github.com/MrJamesThe3rd/finnyai/internal/http/chat"
)

var primed = &finance.Context{
	Sections: []finance.Section{{Name: finance.SectionBalance, Body: "Resumo financeiro:"}},
	Missing:  []finance.SourceName{finance.SourceProfile},
}

func newRouter(t *testing.T, setupMock func(gw *chat.MockGateway, b *chat.MockContextBuilder)) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)

	gw := chat.NewMockGateway(ctrl)
	builder := chat.NewMockContextBuilder(ctrl)
	setupMock(gw, builder)

	manager := chat.NewManager(func() *chat.Session {
		return chat.NewSession(gw, builder)
	})

	r := chi.NewRouter()
	r.Route("/sessions", chatHandler.NewHandler(manager).Routes)

	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func createSession(t *testing.T, h http.Handler) uuid.UUID {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/sessions/", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID      uuid.UUID `json:"id"`
		Context struct {
			Available bool     `json:"available"`
			Sections  []string `json:"sections"`
			Missing   []string `json:"missing"`
		} `json:"context"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.True(t, resp.Context.Available)
	assert.Equal(t, []string{"balance"}, resp.Context.Sections)
	assert.Equal(t, []string{"profile"}, resp.Context.Missing)

	return resp.ID
}

func TestHandler_Conversation(t *testing.T) {
	h := newRouter(t, func(gw *chat.MockGateway, b *chat.MockContextBuilder) {
		b.EXPECT().Build(gomock.Any()).Return(primed).Times(2)
		gw.EXPECT().SendText(gomock.Any(), "hello", primed).Return("Oi!", nil)
	})

	id := createSession(t, h)
	base := "/sessions/" + id.String()

	rec := do(t, h, http.MethodPost, base+"/messages", `{"content":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var reply chat.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&reply))
	assert.Equal(t, "Oi!", reply.Content)
	assert.Equal(t, chat.RoleAssistant, reply.Role)

	rec = do(t, h, http.MethodGet, base+"/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var history []chat.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Content)

	rec = do(t, h, http.MethodPost, base+"/context", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, base+"/messages", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_NoContext(t *testing.T) {
	h := newRouter(t, func(gw *chat.MockGateway, b *chat.MockContextBuilder) {
		b.EXPECT().Build(gomock.Any()).Return(nil)
	})

	rec := do(t, h, http.MethodPost, "/sessions/", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":false`)
	assert.Contains(t, rec.Body.String(), `"missing":["profile","balance","transactions","categories"]`)
}

func TestHandler_BadRequests(t *testing.T) {
	h := newRouter(t, func(gw *chat.MockGateway, b *chat.MockContextBuilder) {
		b.EXPECT().Build(gomock.Any()).Return(primed)
	})

	id := createSession(t, h)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "InvalidID", method: http.MethodGet, path: "/sessions/nope/messages", wantStatus: http.StatusBadRequest},
		{name: "UnknownSession", method: http.MethodGet, path: "/sessions/" + uuid.NewString() + "/messages", wantStatus: http.StatusNotFound},
		{name: "InvalidBody", method: http.MethodPost, path: "/sessions/" + id.String() + "/messages", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "EmptyContent", method: http.MethodPost, path: "/sessions/" + id.String() + "/messages", body: `{"content":"  "}`, wantStatus: http.StatusBadRequest},
		{name: "DeleteUnknown", method: http.MethodDelete, path: "/sessions/" + uuid.NewString(), wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
