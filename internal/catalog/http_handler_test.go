package catalog

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bookreview/internal/apperror"
	"bookreview/internal/book"
	"bookreview/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestHTTPHandler_List(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		want := Query{Q: "tolk", Genre: "Fantasy", Sort: SortYear, Page: 2}
		repo.EXPECT().List(gomock.Any(), want).Return([]BookSummary{{Book: book.Book{ID: "b"}}}, 6, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books?q=tolk&genre=Fantasy&sort=by-year-desc&page=2", nil)
		NewHTTPHandler(svc).List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		env := testutil.DecodeEnvelope(t, w)
		assert.EqualValues(t, 6, env.Meta["total"])
		assert.EqualValues(t, 2, env.Meta["total_pages"])
	})

	t.Run("by-year-desc and its alias", func(t *testing.T) {
		for _, key := range []string{"by-year-desc", "year"} {
			svc, repo, _ := newTestService(t)
			repo.EXPECT().List(gomock.Any(), Query{Sort: SortYear, Page: 1}).Return([]BookSummary{}, 0, nil)

			w := httptest.NewRecorder()
			NewHTTPHandler(svc).List(w, httptest.NewRequest(http.MethodGet, "/v1/books?sort="+key, nil))
			assert.Equal(t, http.StatusOK, w.Code, key)
		}
	})

	t.Run("huge page", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().List(gomock.Any(), Query{Sort: SortNewest, Page: 2305843009213693953}).Return([]BookSummary{}, 4, nil)

		w := httptest.NewRecorder()
		NewHTTPHandler(svc).List(w, httptest.NewRequest(http.MethodGet, "/v1/books?page=2305843009213693953", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		env := testutil.DecodeEnvelope(t, w)
		assert.EqualValues(t, 4, env.Meta["total"])
	})

	t.Run("non-numeric page", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		w := httptest.NewRecorder()
		NewHTTPHandler(svc).List(w, httptest.NewRequest(http.MethodGet, "/v1/books?page=two", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown sort", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		w := httptest.NewRecorder()
		NewHTTPHandler(svc).List(w, httptest.NewRequest(http.MethodGet, "/v1/books?sort=rating", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure is hidden", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, 0, apperror.ErrUnavailable)

		w := httptest.NewRecorder()
		NewHTTPHandler(svc).List(w, httptest.NewRequest(http.MethodGet, "/v1/books", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHTTPHandler_Detail(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.EXPECT().GetBook(gomock.Any(), "ghost").Return(BookSummary{}, apperror.NotFoundf("book ghost"))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/books/ghost", nil)
	r.SetPathValue("id", "ghost")
	NewHTTPHandler(svc).Detail(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", testutil.DecodeEnvelope(t, w).Error.Code)
}
