package fincontext_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finnyai/internal/finance"
	"github.com/MrJamesThe3rd/finnyai/internal/fincontext"
	contextHandler "github.com/MrJamesThe3rd/finnyai/internal/http/fincontext"
	"github.com/MrJamesThe3rd/finnyai/internal/normalize"
)

func TestHandler_Get(t *testing.T) {
	errDown := errors.New("down")

	tests := []struct {
		name        string
		setupMock   func(m *finance.MockSource)
		wantStatus  int
		wantMissing []string
	}{
		{
			name: "Partial",
			setupMock: func(m *finance.MockSource) {
				m.EXPECT().Profile(gomock.Any()).Return(finance.RawRecord{"name": "Ana"}, nil)
				m.EXPECT().Balance(gomock.Any()).Return(nil, errDown)
				m.EXPECT().RecentTransactions(gomock.Any(), gomock.Any()).Return(nil, errDown)
				m.EXPECT().Categories(gomock.Any()).Return(nil, errDown)
			},
			wantStatus:  http.StatusOK,
			wantMissing: []string{"balance", "transactions", "categories"},
		},
		{
			name: "Nothing",
			setupMock: func(m *finance.MockSource) {
				m.EXPECT().Profile(gomock.Any()).Return(nil, errDown)
				m.EXPECT().Balance(gomock.Any()).Return(nil, errDown)
				m.EXPECT().RecentTransactions(gomock.Any(), gomock.Any()).Return(nil, errDown)
				m.EXPECT().Categories(gomock.Any()).Return(nil, errDown)
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			src := finance.NewMockSource(ctrl)
			tt.setupMock(src)

			r := chi.NewRouter()
			r.Route("/context", contextHandler.NewHandler(fincontext.New(src, normalize.New("pt-BR", "BRL"))).Routes)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/context/", nil))

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				assert.Empty(t, rec.Body.String())
				return
			}

			var resp struct {
				Text     string `json:"text"`
				Sections []struct {
					Name string `json:"name"`
				} `json:"sections"`
				Missing []string `json:"missing"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

			assert.Equal(t, "Perfil do usuário:\nNome: Ana", resp.Text)
			require.Len(t, resp.Sections, 1)
			assert.Equal(t, "profile", resp.Sections[0].Name)
			assert.Equal(t, tt.wantMissing, resp.Missing)
		})
	}
}
