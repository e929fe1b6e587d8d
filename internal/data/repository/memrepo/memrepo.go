// Package memrepo is an in-memory implementation of the repository interfaces
// with the same observable rules as the Postgres schema. Used by tests.
package memrepo

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/internal/data/repository"

	"github.com/google/uuid"
)

// DefaultSkills mirrors the seeded skill set.
var DefaultSkills = []entity.Skill{
	{ID: 1, Name: "Television Repair", Category: "Television"},
	{ID: 2, Name: "Television Installation", Category: "Television"},
	{ID: 3, Name: "Refrigerator Repair", Category: "Refrigerator"},
	{ID: 4, Name: "Gadget Repair", Category: "Gadgets"},
	{ID: 5, Name: "Phone Repair", Category: "Gadgets"},
	{ID: 6, Name: "Game Console Repair", Category: "Game Gadgets"},
	{ID: 7, Name: "Air Conditioner Repair", Category: "Air Conditioner"},
	{ID: 8, Name: "Washing Machine Repair", Category: "Washing Machine"},
	{ID: 9, Name: "Microwave Repair", Category: "Microwave"},
	{ID: 10, Name: "Laptop Repair", Category: "Laptop"},
}

type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*entity.User
	sessions map[uuid.UUID]*entity.Session
	skills   []entity.Skill
	artisans map[uuid.UUID]*entity.Artisan
	bookings map[uuid.UUID]*entity.Booking
	reviews  map[uuid.UUID]*entity.Review
}

func New() *Store {
	return &Store{
		users:    map[uuid.UUID]*entity.User{},
		sessions: map[uuid.UUID]*entity.Session{},
		skills:   append([]entity.Skill(nil), DefaultSkills...),
		artisans: map[uuid.UUID]*entity.Artisan{},
		bookings: map[uuid.UUID]*entity.Booking{},
		reviews:  map[uuid.UUID]*entity.Review{},
	}
}

// Repository exposes the store through the repository interfaces.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		User:    &userRepo{s},
		Session: &sessionRepo{s},
		Skill:   &skillRepo{s},
		Artisan: &artisanRepo{s},
		Booking: &bookingRepo{s},
		Review:  &reviewRepo{s},
	}
}

// AddArtisan seeds a directory entry. Zero ID and timestamps are filled in.
func (s *Store) AddArtisan(a entity.Artisan) *entity.Artisan {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
		a.UpdatedAt = a.CreatedAt
	}
	stored := cloneArtisan(&a)
	s.artisans[a.ID] = stored
	return cloneArtisan(stored)
}

// AddUser seeds an account as-is.
func (s *Store) AddUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
}

// Artisan returns a snapshot of the stored artisan, nil if absent.
func (s *Store) Artisan(id uuid.UUID) *entity.Artisan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.artisans[id]; ok {
		return cloneArtisan(a)
	}
	return nil
}

// SetBookingStatus overwrites a status without any lifecycle rules.
func (s *Store) SetBookingStatus(id uuid.UUID, status entity.BookingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bookings[id]; ok {
		b.Status = status
	}
}

func cloneArtisan(a *entity.Artisan) *entity.Artisan {
	c := *a
	c.Skills = append([]entity.Skill{}, a.Skills...)
	return &c
}

// ==================== USERS ====================

type userRepo struct{ s *Store }

func (r *userRepo) emailTaken(email string) bool {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *userRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(user.Email) {
		return repository.ErrEmailTaken
	}
	c := *user
	r.s.users[user.ID] = &c
	return nil
}

func (r *userRepo) CreateWithArtisan(_ context.Context, user *entity.User, artisan *entity.Artisan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(user.Email) {
		return repository.ErrEmailTaken
	}
	c := *user
	r.s.users[user.ID] = &c
	r.s.artisans[artisan.ID] = cloneArtisan(artisan)
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

// ==================== SESSIONS ====================

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *session
	r.s.sessions[session.ID] = &c
	return nil
}

func (r *sessionRepo) FindValidSession(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if sess, ok := r.s.sessions[id]; ok && sess.Active(time.Now()) {
		c := *sess
		return &c, nil
	}
	return nil, nil
}

func (r *sessionRepo) Revoke(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sess, ok := r.s.sessions[id]
	if !ok || sess.RevokedAt != nil {
		return errors.New("session not found or already revoked")
	}
	now := time.Now()
	sess.RevokedAt = &now
	return nil
}

func (r *sessionRepo) CleanExpiredSessions(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cutoff := time.Now().Add(-7 * 24 * time.Hour)
	for id, sess := range r.s.sessions {
		if sess.ExpiresAt.Before(cutoff) {
			delete(r.s.sessions, id)
		}
	}
	return nil
}

// ==================== SKILLS ====================

type skillRepo struct{ s *Store }

func (r *skillRepo) FindAll(_ context.Context) ([]entity.Skill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := append([]entity.Skill(nil), r.s.skills...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *skillRepo) FindByNames(_ context.Context, names []string) ([]entity.Skill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	want := map[string]bool{}
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = true
	}

	var out []entity.Skill
	for _, sk := range r.s.skills {
		if want[strings.ToLower(sk.Name)] {
			out = append(out, sk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ==================== ARTISANS ====================

type artisanRepo struct{ s *Store }

func (r *artisanRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Artisan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a, ok := r.s.artisans[id]; ok {
		return cloneArtisan(a), nil
	}
	return nil, nil
}

func (r *artisanRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Artisan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.artisans {
		if a.UserID != nil && *a.UserID == userID {
			return cloneArtisan(a), nil
		}
	}
	return nil, nil
}

func (r *artisanRepo) FindByName(_ context.Context, name string) ([]*entity.Artisan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	name = strings.TrimSpace(name)
	out := []*entity.Artisan{}
	for _, a := range r.s.artisans {
		if strings.EqualFold(a.Name, name) {
			out = append(out, cloneArtisan(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *artisanRepo) List(_ context.Context, f entity.ArtisanFilter) ([]*entity.Artisan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*entity.Artisan{}
	for _, a := range r.s.artisans {
		if r.matches(a, f) {
			out = append(out, cloneArtisan(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *artisanRepo) matches(a *entity.Artisan, f entity.ArtisanFilter) bool {
	if f.Category != nil && a.Category != *f.Category {
		return false
	}
	if f.IsAvailable != nil && a.IsAvailable != *f.IsAvailable {
		return false
	}
	if f.TopRated && a.Rating < entity.TopRatingThreshold {
		return false
	}
	if f.Search != nil && *f.Search != "" {
		q := strings.ToLower(*f.Search)
		if !strings.Contains(strings.ToLower(a.Name), q) && !strings.Contains(strings.ToLower(a.Location), q) {
			return false
		}
	}
	if f.Skill != nil && *f.Skill != "" {
		q := strings.ToLower(*f.Skill)
		found := false
		for _, sk := range a.Skills {
			if strings.Contains(strings.ToLower(sk.Name), q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Booked != nil && r.s.hasActiveBooking(a.ID, uuid.Nil) != *f.Booked {
		return false
	}
	return true
}

// hasActiveBooking ignores the booking named by except.
func (s *Store) hasActiveBooking(artisanID, except uuid.UUID) bool {
	for _, b := range s.bookings {
		if b.ArtisanID == artisanID && b.ID != except && b.Status.Active() {
			return true
		}
	}
	return false
}

// ==================== BOOKINGS ====================

type bookingRepo struct{ s *Store }

func (r *bookingRepo) CreateExclusive(_ context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.artisans[booking.ArtisanID]
	if !ok {
		return repository.ErrArtisanNotFound
	}
	if !a.IsAvailable {
		return repository.ErrArtisanUnavailable
	}
	for _, b := range r.s.bookings {
		if b.ArtisanID == booking.ArtisanID &&
			b.ServiceDate.Equal(booking.ServiceDate) &&
			b.ServiceTime == booking.ServiceTime &&
			b.Status.Active() {
			return repository.ErrSlotTaken
		}
	}

	c := *booking
	r.s.bookings[booking.ID] = &c
	a.IsAvailable = false
	return nil
}

func (r *bookingRepo) withNames(b *entity.Booking) *entity.Booking {
	c := *b
	if u, ok := r.s.users[b.ClientID]; ok {
		c.ClientName = u.FullName
	}
	if a, ok := r.s.artisans[b.ArtisanID]; ok {
		c.ArtisanName = a.Name
	}
	return &c
}

func (r *bookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if b, ok := r.s.bookings[id]; ok {
		return r.withNames(b), nil
	}
	return nil, nil
}

func (r *bookingRepo) FindByClientID(_ context.Context, clientID uuid.UUID) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*entity.Booking{}
	for _, b := range r.s.bookings {
		if b.ClientID == clientID {
			out = append(out, r.withNames(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookedAt.Equal(out[j].BookedAt) {
			return out[i].BookedAt.After(out[j].BookedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *bookingRepo) FindByArtisanID(_ context.Context, artisanID uuid.UUID) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*entity.Booking{}
	for _, b := range r.s.bookings {
		if b.ArtisanID == artisanID {
			out = append(out, r.withNames(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ServiceDate.Equal(out[j].ServiceDate) {
			return out[i].ServiceDate.After(out[j].ServiceDate)
		}
		if out[i].ServiceTime != out[j].ServiceTime {
			return out[i].ServiceTime > out[j].ServiceTime
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *bookingRepo) UpdateStatus(_ context.Context, booking *entity.Booking, to entity.BookingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.artisans[booking.ArtisanID]
	if !ok {
		return repository.ErrArtisanNotFound
	}
	stored, ok := r.s.bookings[booking.ID]
	if !ok || stored.Status != booking.Status {
		return repository.ErrStatusChanged
	}

	stored.Status = to
	stored.UpdatedAt = time.Now()
	if !to.Active() && !r.s.hasActiveBooking(a.ID, uuid.Nil) {
		a.IsAvailable = true
	}
	return nil
}

// ==================== REVIEWS ====================

type reviewRepo struct{ s *Store }

func (r *reviewRepo) recompute(artisanID uuid.UUID) (float64, error) {
	a, ok := r.s.artisans[artisanID]
	if !ok {
		return 0, repository.ErrArtisanNotFound
	}

	sum, n := 0, 0
	for _, rv := range r.s.reviews {
		if rv.ArtisanID == artisanID {
			sum += rv.Rating
			n++
		}
	}
	a.Rating = 0
	if n > 0 {
		a.Rating = math.Round(float64(sum)/float64(n)*10) / 10
	}
	return a.Rating, nil
}

func (r *reviewRepo) Create(_ context.Context, review *entity.Review) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rv := range r.s.reviews {
		if rv.ClientID == review.ClientID && rv.ArtisanID == review.ArtisanID {
			return 0, repository.ErrAlreadyReviewed
		}
	}
	c := *review
	r.s.reviews[review.ID] = &c
	return r.recompute(review.ArtisanID)
}

func (r *reviewRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rv, ok := r.s.reviews[id]; ok {
		return r.withName(rv), nil
	}
	return nil, nil
}

func (r *reviewRepo) withName(rv *entity.Review) *entity.Review {
	c := *rv
	if u, ok := r.s.users[rv.ClientID]; ok {
		c.ClientName = u.FullName
	}
	return &c
}

func (r *reviewRepo) FindByArtisanID(_ context.Context, artisanID uuid.UUID) ([]*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*entity.Review{}
	for _, rv := range r.s.reviews {
		if rv.ArtisanID == artisanID {
			out = append(out, r.withName(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *reviewRepo) Delete(_ context.Context, review *entity.Review) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reviews[review.ID]; !ok {
		return 0, repository.ErrReviewNotFound
	}
	delete(r.s.reviews, review.ID)
	return r.recompute(review.ArtisanID)
}

func (r *reviewRepo) HasCompletedBooking(_ context.Context, clientID, artisanID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.bookings {
		if b.ClientID == clientID && b.ArtisanID == artisanID && b.Status == entity.BookingStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}
