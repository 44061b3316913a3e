// Package memory is an in-process store with the same observable behaviour
// as the Postgres repositories: owner-scoped writes, the one-review-per-book
// index, the rating check and cascading deletes. It backs the end-to-end
// tests and local runs without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/catalog"
	"bookreview/internal/policy"
	"bookreview/internal/profile"
	"bookreview/internal/review"
	"bookreview/internal/session"

	"github.com/google/uuid"
)

var (
	_ auth.Repository             = (*IdentityRepo)(nil)
	_ profile.Repository          = (*ProfileRepo)(nil)
	_ book.Repository             = (*BookRepo)(nil)
	_ review.Repository           = (*ReviewRepo)(nil)
	_ catalog.Repository          = (*CatalogRepo)(nil)
	_ session.Repository          = (*SessionRepo)(nil)
	_ session.BlacklistRepository = (*BlacklistRepo)(nil)
)

type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	identities map[string]auth.Identity
	profiles   map[string]profile.Profile
	books      map[string]book.Book
	reviews    map[string]review.Review
	sessions   map[string]session.Session
	blacklist  map[string]time.Time
}

func New() *Store {
	return &Store{
		now:        time.Now,
		identities: map[string]auth.Identity{},
		profiles:   map[string]profile.Profile{},
		books:      map[string]book.Book{},
		reviews:    map[string]review.Review{},
		sessions:   map[string]session.Session{},
		blacklist:  map[string]time.Time{},
	}
}

// WithClock replaces the clock used for session expiry.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Identities() *IdentityRepo { return &IdentityRepo{s} }
func (s *Store) Profiles() *ProfileRepo    { return &ProfileRepo{s} }
func (s *Store) Books() *BookRepo          { return &BookRepo{s} }
func (s *Store) Reviews() *ReviewRepo      { return &ReviewRepo{s} }
func (s *Store) Catalog() *CatalogRepo     { return &CatalogRepo{s} }
func (s *Store) Sessions() *SessionRepo    { return &SessionRepo{s} }
func (s *Store) Blacklist() *BlacklistRepo { return &BlacklistRepo{s} }

func newestFirst(aCreated, bCreated time.Time, aID, bID string) bool {
	if !aCreated.Equal(bCreated) {
		return aCreated.After(bCreated)
	}
	return aID < bID
}

// IdentityRepo implements auth.Repository.
type IdentityRepo struct{ s *Store }

func (r *IdentityRepo) CreateWithProfile(_ context.Context, ident *auth.Identity, p *profile.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.identities[ident.ID]; ok {
		return apperror.ConstraintViolationf("identity %s exists", ident.ID)
	}
	for _, other := range r.s.identities {
		if other.Email == ident.Email {
			return apperror.ConstraintViolationf("email already registered")
		}
	}
	if p.ID != ident.ID {
		return apperror.Unauthorizedf("profile must belong to the new identity")
	}
	for _, other := range r.s.profiles {
		if other.Email == p.Email {
			return apperror.ConstraintViolationf("email already registered")
		}
	}

	r.s.identities[ident.ID] = *ident
	r.s.profiles[p.ID] = *p
	return nil
}

func (r *IdentityRepo) GetByEmail(_ context.Context, email string) (auth.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, ident := range r.s.identities {
		if ident.Email == email {
			return ident, nil
		}
	}
	return auth.Identity{}, apperror.NotFoundf("identity")
}

func (r *IdentityRepo) GetByID(_ context.Context, id string) (auth.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ident, ok := r.s.identities[id]
	if !ok {
		return auth.Identity{}, apperror.NotFoundf("identity %s", id)
	}
	return ident, nil
}

// ProfileRepo implements profile.Repository.
type ProfileRepo struct{ s *Store }

func (r *ProfileRepo) GetByID(_ context.Context, id string) (profile.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return profile.Profile{}, apperror.NotFoundf("profile %s", id)
	}
	return p, nil
}

func (r *ProfileRepo) UpdateDisplayName(_ context.Context, actorID, id, name string, updatedAt time.Time) (profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok || id != actorID {
		return profile.Profile{}, apperror.NotFoundf("profile %s", id)
	}
	p.DisplayName = name
	p.UpdatedAt = updatedAt
	r.s.profiles[id] = p
	return p, nil
}

// BookRepo implements book.Repository.
type BookRepo struct{ s *Store }

func (r *BookRepo) GetByID(_ context.Context, id string) (book.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.books[id]
	if !ok {
		return book.Book{}, apperror.NotFoundf("book %s", id)
	}
	return b, nil
}

func (r *BookRepo) Create(_ context.Context, actorID string, b *book.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.OwnerID != actorID {
		return apperror.Unauthorizedf("row-level policy rejected book insert")
	}
	if _, ok := r.s.profiles[b.OwnerID]; !ok {
		return apperror.ConstraintViolationf("owner %s does not exist", b.OwnerID)
	}
	if _, ok := r.s.books[b.ID]; ok {
		return apperror.ConstraintViolationf("book %s exists", b.ID)
	}
	r.s.books[b.ID] = *b
	return nil
}

func (r *BookRepo) Update(_ context.Context, actorID string, b *book.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.books[b.ID]
	if !ok || current.OwnerID != actorID {
		return apperror.NotFoundf("book %s", b.ID)
	}
	updated := *b
	updated.OwnerID = current.OwnerID
	updated.CreatedAt = current.CreatedAt
	r.s.books[b.ID] = updated
	return nil
}

func (r *BookRepo) Delete(_ context.Context, actorID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.books[id]
	if !ok || current.OwnerID != actorID {
		return apperror.NotFoundf("book %s", id)
	}
	delete(r.s.books, id)
	for rid, rv := range r.s.reviews {
		if rv.BookID == id {
			delete(r.s.reviews, rid)
		}
	}
	return nil
}

func (r *BookRepo) ListByOwner(_ context.Context, ownerID string) ([]book.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []book.Book{}
	for _, b := range r.s.books {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

// ReviewRepo implements review.Repository.
type ReviewRepo struct{ s *Store }

// withAuthor fills the author display name. Callers hold the lock.
func (r *ReviewRepo) withAuthor(rv review.Review) review.Review {
	rv.AuthorName = r.s.profiles[rv.AuthorID].DisplayName
	return rv
}

func (r *ReviewRepo) GetByID(_ context.Context, id string) (review.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return review.Review{}, apperror.NotFoundf("review %s", id)
	}
	return r.withAuthor(rv), nil
}

func (r *ReviewRepo) Exists(_ context.Context, bookID, authorID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rv := range r.s.reviews {
		if rv.BookID == bookID && rv.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ReviewRepo) BookExists(_ context.Context, bookID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.books[bookID]
	return ok, nil
}

func (r *ReviewRepo) Create(_ context.Context, actorID string, rv *review.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rv.AuthorID != actorID {
		return apperror.Unauthorizedf("row-level policy rejected review insert")
	}
	if err := policy.CheckRating(rv.Rating); err != nil {
		return err
	}
	if _, ok := r.s.books[rv.BookID]; !ok {
		return apperror.NotFoundf("book %s", rv.BookID)
	}
	if _, ok := r.s.profiles[rv.AuthorID]; !ok {
		return apperror.ConstraintViolationf("author %s does not exist", rv.AuthorID)
	}
	for _, other := range r.s.reviews {
		if other.BookID == rv.BookID && other.AuthorID == rv.AuthorID {
			return apperror.ConstraintViolationf("actor already reviewed this book")
		}
	}
	stored := *rv
	stored.AuthorName = ""
	r.s.reviews[rv.ID] = stored
	rv.AuthorName = r.s.profiles[rv.AuthorID].DisplayName
	return nil
}

func (r *ReviewRepo) Update(_ context.Context, actorID string, rv *review.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.reviews[rv.ID]
	if !ok || current.AuthorID != actorID {
		return apperror.NotFoundf("review %s", rv.ID)
	}
	if err := policy.CheckRating(rv.Rating); err != nil {
		return err
	}
	current.Rating = rv.Rating
	current.Body = rv.Body
	current.UpdatedAt = rv.UpdatedAt
	r.s.reviews[rv.ID] = current
	return nil
}

func (r *ReviewRepo) Delete(_ context.Context, actorID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.reviews[id]
	if !ok || current.AuthorID != actorID {
		return apperror.NotFoundf("review %s", id)
	}
	delete(r.s.reviews, id)
	return nil
}

func (r *ReviewRepo) list(match func(review.Review) bool) []review.Review {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []review.Review{}
	for _, rv := range r.s.reviews {
		if match(rv) {
			out = append(out, r.withAuthor(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (r *ReviewRepo) ListByBook(_ context.Context, bookID string) ([]review.Review, error) {
	return r.list(func(rv review.Review) bool { return rv.BookID == bookID }), nil
}

func (r *ReviewRepo) ListByAuthor(_ context.Context, authorID string) ([]review.Review, error) {
	return r.list(func(rv review.Review) bool { return rv.AuthorID == authorID }), nil
}

// CatalogRepo implements catalog.Repository.
type CatalogRepo struct{ s *Store }

// summarize builds a listing row. Callers hold the lock.
func (r *CatalogRepo) summarize(b book.Book) catalog.BookSummary {
	var ratings []int
	for _, rv := range r.s.reviews {
		if rv.BookID == b.ID {
			ratings = append(ratings, rv.Rating)
		}
	}
	return catalog.BookSummary{
		Book:          b,
		OwnerName:     r.s.profiles[b.OwnerID].DisplayName,
		AverageRating: review.RoundOne(review.Average(ratings)),
		ReviewCount:   len(ratings),
	}
}

func matches(b book.Book, q catalog.Query) bool {
	if q.Q != "" {
		needle := strings.ToLower(q.Q)
		if !strings.Contains(strings.ToLower(b.Title), needle) && !strings.Contains(strings.ToLower(b.Author), needle) {
			return false
		}
	}
	if q.Genre != "" && b.Genre != q.Genre {
		return false
	}
	if q.OwnerID != "" && b.OwnerID != q.OwnerID {
		return false
	}
	return true
}

func less(sortKey catalog.Sort, a, b book.Book) bool {
	switch sortKey {
	case catalog.SortOldest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	case catalog.SortYear:
		if a.PublishedYear != b.PublishedYear {
			return a.PublishedYear > b.PublishedYear
		}
	default:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
	}
	return a.ID < b.ID
}

func (r *CatalogRepo) List(_ context.Context, q catalog.Query) ([]catalog.BookSummary, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []book.Book
	for _, b := range r.s.books {
		if matches(b, q) {
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return less(q.Sort, matched[i], matched[j]) })

	total := len(matched)
	out := []catalog.BookSummary{}
	start := q.Offset()
	if start < 0 || start >= total {
		return out, total, nil
	}
	end := min(start+catalog.PageSize, total)
	for _, b := range matched[start:end] {
		out = append(out, r.summarize(b))
	}
	return out, total, nil
}

func (r *CatalogRepo) GetBook(_ context.Context, id string) (catalog.BookSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.books[id]
	if !ok {
		return catalog.BookSummary{}, apperror.NotFoundf("book %s", id)
	}
	return r.summarize(b), nil
}

func (r *CatalogRepo) Genres(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := map[string]bool{}
	out := []string{}
	for _, b := range r.s.books {
		g := b.Genre
		if strings.TrimSpace(g) == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	sort.Strings(out)
	return out, nil
}

// SessionRepo implements session.Repository.
type SessionRepo struct{ s *Store }

func (r *SessionRepo) Create(_ context.Context, sess *session.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	sess.ID = uuid.NewString()
	sess.CreatedAt = now
	sess.LastUsedAt = now
	r.s.sessions[sess.ID] = *sess
	return nil
}

func (r *SessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (session.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	now := r.s.now()
	for _, sess := range r.s.sessions {
		if sess.RefreshTokenHash == tokenHash && sess.ExpiresAt.After(now) {
			return sess, nil
		}
	}
	return session.Session{}, apperror.NotFoundf("session")
}

func (r *SessionRepo) ListByUserID(_ context.Context, userID string) ([]session.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	now := r.s.now()
	out := []session.Session{}
	for _, sess := range r.s.sessions {
		if sess.UserID == userID && sess.ExpiresAt.After(now) {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastUsedAt.After(out[j].LastUsedAt)
	})
	return out, nil
}

func (r *SessionRepo) Delete(_ context.Context, userID, sessionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return apperror.NotFoundf("session %s", sessionID)
	}
	delete(r.s.sessions, sessionID)
	return nil
}

func (r *SessionRepo) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, sess := range r.s.sessions {
		if sess.RefreshTokenHash == tokenHash {
			delete(r.s.sessions, id)
		}
	}
	return nil
}

func (r *SessionRepo) UpdateLastUsed(_ context.Context, sessionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[sessionID]
	if !ok {
		return apperror.NotFoundf("session %s", sessionID)
	}
	sess.LastUsedAt = r.s.now()
	r.s.sessions[sessionID] = sess
	return nil
}

func (r *SessionRepo) CleanupExpired(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	for id, sess := range r.s.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(r.s.sessions, id)
		}
	}
	return nil
}

// BlacklistRepo implements session.BlacklistRepository.
type BlacklistRepo struct{ s *Store }

func (r *BlacklistRepo) AddToken(_ context.Context, jti, _ string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.blacklist[jti] = expiresAt
	return nil
}

func (r *BlacklistRepo) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	exp, ok := r.s.blacklist[jti]
	return ok && exp.After(r.s.now()), nil
}

func (r *BlacklistRepo) CleanupExpired(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	for jti, exp := range r.s.blacklist {
		if !exp.After(now) {
			delete(r.s.blacklist, jti)
		}
	}
	return nil
}
