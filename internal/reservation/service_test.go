package reservation

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmadrigal/space-reservation-backend/internal/auth"
	"github.com/calmadrigal/space-reservation-backend/internal/space"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

var (
	adminActor   = auth.Actor{ID: 1, Email: "admin@library.edu", FirstName: "Ana", LastName: "Duarte", Role: auth.RoleAdmin}
	teacherActor = auth.Actor{ID: 2, Email: "teacher@library.edu", FirstName: "Luis", LastName: "Mora", Role: auth.RoleTeacher}
	otherActor   = auth.Actor{ID: 3, Email: "other@library.edu", Role: auth.RoleTeacher}
)

// fakeRepo is an in-memory Repository. Its mutex serializes the
// conflict-check-then-write sequence the same way the row locks do in
// the pgx implementation.
type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*Reservation
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[int64]*Reservation)}
}

func cloneReservation(r *Reservation) *Reservation {
	c := *r
	if r.ApprovedBy != nil {
		ab := *r.ApprovedBy
		c.ApprovedBy = &ab
	}
	if r.DecisionAt != nil {
		da := *r.DecisionAt
		c.DecisionAt = &da
	}
	return &c
}

func (f *fakeRepo) hasConflict(spaceID int64, start, end time.Time, excludeID int64) bool {
	for _, r := range f.items {
		if r.Space.ID != spaceID || r.ID == excludeID || !r.Status.IsActive() {
			continue
		}
		if Overlaps(r.StartAt, r.EndAt, start, end) {
			return true
		}
	}
	return false
}

func (f *fakeRepo) Create(_ context.Context, r *Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.hasConflict(r.Space.ID, r.StartAt, r.EndAt, 0) {
		return ErrOverlapConflict
	}

	f.nextID++
	r.ID = f.nextID
	r.CreatedAt = testNow
	r.UpdatedAt = testNow
	f.items[r.ID] = cloneReservation(r)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneReservation(r), nil
}

// Update mirrors the row-locked transaction of the pgx implementation:
// the mutex is held from the state read through fn to the write, so fn
// always observes the latest committed state.
func (f *fakeRepo) Update(_ context.Context, id int64, fn func(*Reservation) (bool, error)) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}

	res := cloneReservation(cur)
	recheckConflict, err := fn(res)
	if err != nil {
		return nil, err
	}
	if recheckConflict && f.hasConflict(res.Space.ID, res.StartAt, res.EndAt, res.ID) {
		return nil, ErrOverlapConflict
	}

	res.UpdatedAt = testNow
	f.items[id] = cloneReservation(res)
	return res, nil
}

func (f *fakeRepo) List(_ context.Context, filter Filter) ([]*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*Reservation
	for _, r := range f.items {
		if filter.SpaceID != 0 && r.Space.ID != filter.SpaceID {
			continue
		}
		if filter.CreatedByID != 0 && r.CreatedBy.ID != filter.CreatedByID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if r.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if filter.End != nil && !r.StartAt.Before(*filter.End) {
			continue
		}
		if filter.Start != nil && !r.EndAt.After(*filter.Start) {
			continue
		}
		out = append(out, cloneReservation(r))
	}

	sort.Slice(out, func(i, j int) bool {
		if filter.OrderAscending {
			return out[i].StartAt.Before(out[j].StartAt)
		}
		return out[j].StartAt.Before(out[i].StartAt)
	})
	return out, nil
}

func (f *fakeRepo) BusyBlocks(_ context.Context, spaceID int64, start, end time.Time) ([]Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var blocks []Block
	for _, r := range f.items {
		if r.Space.ID != spaceID || !r.Status.IsActive() {
			continue
		}
		if Overlaps(r.StartAt, r.EndAt, start, end) {
			blocks = append(blocks, Block{StartAt: r.StartAt, EndAt: r.EndAt})
		}
	}
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].StartAt.Before(blocks[j].StartAt)
	})
	return blocks, nil
}

// fakeResolver serves space snapshots from memory and records the
// credential it was handed.
type fakeResolver struct {
	spaces         map[int64]space.Snapshot
	inactive       map[int64]bool
	def            *space.Snapshot
	lastCredential string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		spaces: map[int64]space.Snapshot{
			1: {ID: 1, Name: "Sala A", Location: "Piso 1"},
			2: {ID: 2, Name: "Sala B", Location: "Piso 2"},
		},
		inactive: map[int64]bool{},
		def:      &space.Snapshot{ID: 99, Name: "Módulo 3", Description: "Default reservable space"},
	}
}

func (f *fakeResolver) Resolve(_ context.Context, id int64, credential string) (space.Snapshot, error) {
	f.lastCredential = credential
	if f.inactive[id] {
		return space.Snapshot{}, space.ErrInactive
	}
	s, ok := f.spaces[id]
	if !ok {
		return space.Snapshot{}, space.ErrNotFound
	}
	return s, nil
}

func (f *fakeResolver) ResolveDefault(_ context.Context, credential string) (space.Snapshot, error) {
	f.lastCredential = credential
	if f.def == nil {
		return space.Snapshot{}, space.ErrNotFound
	}
	return *f.def, nil
}

func newTestService(repo Repository, resolver space.Resolver) *service {
	return &service{
		repo:        repo,
		resolver:    resolver,
		minDuration: 30 * time.Minute,
		maxDuration: 4 * time.Hour,
		now:         func() time.Time { return testNow },
	}
}

func spaceID(id int64) *int64 { return &id }

func createAt(t *testing.T, svc *service, actor auth.Actor, sp int64, start, end time.Time) *Reservation {
	t.Helper()
	res, err := svc.Create(context.Background(), actor, CreateRequest{
		Title:   "Class",
		StartAt: start,
		EndAt:   end,
		SpaceID: spaceID(sp),
	})
	require.NoError(t, err)
	return res
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("success with explicit space", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())

		res, err := svc.Create(ctx, teacherActor, CreateRequest{
			Title:       "  Study group  ",
			Description: "weekly session",
			StartAt:     testNow.Add(time.Hour),
			EndAt:       testNow.Add(2 * time.Hour),
			SpaceID:     spaceID(1),
		})
		require.NoError(t, err)

		assert.Equal(t, StatusPending, res.Status)
		assert.Equal(t, "Study group", res.Title)
		assert.Equal(t, int64(1), res.Space.ID)
		assert.Equal(t, "Sala A", res.Space.Name)
		assert.Equal(t, teacherActor.ID, res.CreatedBy.ID)
		assert.Equal(t, teacherActor.Email, res.CreatedBy.Email)
		assert.Nil(t, res.ApprovedBy)
		assert.Nil(t, res.DecisionAt)
		assert.NotZero(t, res.ID)
	})

	t.Run("timestamps are stored in UTC", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		bogota := time.FixedZone("America/Bogota", -5*3600)

		start := time.Date(2025, 3, 11, 9, 0, 0, 0, bogota)
		res, err := svc.Create(ctx, teacherActor, CreateRequest{
			Title:   "Morning class",
			StartAt: start,
			EndAt:   start.Add(time.Hour),
			SpaceID: spaceID(1),
		})
		require.NoError(t, err)

		assert.Equal(t, time.UTC, res.StartAt.Location())
		assert.True(t, res.StartAt.Equal(start))
	})

	t.Run("falls back to default space", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())

		res, err := svc.Create(ctx, teacherActor, CreateRequest{
			Title:   "No space given",
			StartAt: testNow.Add(time.Hour),
			EndAt:   testNow.Add(2 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(99), res.Space.ID)
		assert.Equal(t, "Módulo 3", res.Space.Name)
	})

	t.Run("forwards the caller credential to the resolver", func(t *testing.T) {
		resolver := newFakeResolver()
		svc := newTestService(newFakeRepo(), resolver)

		_, err := svc.Create(ctx, teacherActor, CreateRequest{
			Title:      "Remote deployment",
			StartAt:    testNow.Add(time.Hour),
			EndAt:      testNow.Add(2 * time.Hour),
			SpaceID:    spaceID(1),
			Credential: "Bearer abc123",
		})
		require.NoError(t, err)
		assert.Equal(t, "Bearer abc123", resolver.lastCredential)
	})

	t.Run("resolver failures propagate before any write", func(t *testing.T) {
		resolver := newFakeResolver()
		resolver.inactive[2] = true
		repo := newFakeRepo()
		svc := newTestService(repo, resolver)

		_, err := svc.Create(ctx, teacherActor, CreateRequest{
			Title:   "Inactive",
			StartAt: testNow.Add(time.Hour),
			EndAt:   testNow.Add(2 * time.Hour),
			SpaceID: spaceID(2),
		})
		assert.ErrorIs(t, err, space.ErrInactive)

		_, err = svc.Create(ctx, teacherActor, CreateRequest{
			Title:   "Missing",
			StartAt: testNow.Add(time.Hour),
			EndAt:   testNow.Add(2 * time.Hour),
			SpaceID: spaceID(42),
		})
		assert.ErrorIs(t, err, space.ErrNotFound)

		assert.Empty(t, repo.items, "no state must be written when resolution fails")
	})

	t.Run("validation failures", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())

		_, err := svc.Create(ctx, teacherActor, CreateRequest{
			Title:   "   ",
			StartAt: testNow.Add(time.Hour),
			EndAt:   testNow.Add(2 * time.Hour),
			SpaceID: spaceID(1),
		})
		assert.ErrorIs(t, err, ErrInvalidTitle)

		_, err = svc.Create(ctx, teacherActor, CreateRequest{
			Title:   "Too short",
			StartAt: testNow.Add(time.Hour),
			EndAt:   testNow.Add(time.Hour + 10*time.Minute),
			SpaceID: spaceID(1),
		})
		assert.ErrorIs(t, err, ErrTooShort)

		_, err = svc.Create(ctx, teacherActor, CreateRequest{
			Title:   "Too long",
			StartAt: testNow.Add(time.Hour),
			EndAt:   testNow.Add(6 * time.Hour),
			SpaceID: spaceID(1),
		})
		assert.ErrorIs(t, err, ErrTooLong)

		_, err = svc.Create(ctx, teacherActor, CreateRequest{
			Title:   "Inverted",
			StartAt: testNow.Add(2 * time.Hour),
			EndAt:   testNow.Add(time.Hour),
			SpaceID: spaceID(1),
		})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestCreateConflicts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeRepo(), newFakeResolver())

	// Existing PENDING reservation at [T+1h, T+2h) on space 1.
	createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

	t.Run("overlapping interval conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, otherActor, CreateRequest{
			Title:   "Overlap",
			StartAt: testNow.Add(90 * time.Minute),
			EndAt:   testNow.Add(150 * time.Minute),
			SpaceID: spaceID(1),
		})
		assert.ErrorIs(t, err, ErrOverlapConflict)
	})

	t.Run("touching boundary does not conflict", func(t *testing.T) {
		_, err := svc.Create(ctx, otherActor, CreateRequest{
			Title:   "Back to back",
			StartAt: testNow.Add(2 * time.Hour),
			EndAt:   testNow.Add(3 * time.Hour),
			SpaceID: spaceID(1),
		})
		assert.NoError(t, err)
	})

	t.Run("other space does not conflict", func(t *testing.T) {
		_, err := svc.Create(ctx, otherActor, CreateRequest{
			Title:   "Different room",
			StartAt: testNow.Add(time.Hour),
			EndAt:   testNow.Add(2 * time.Hour),
			SpaceID: spaceID(2),
		})
		assert.NoError(t, err)
	})

	t.Run("cancelled reservations free their slot", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		_, err := svc.Cancel(ctx, teacherActor, res.ID)
		require.NoError(t, err)

		_, err = svc.Create(ctx, otherActor, CreateRequest{
			Title:   "Reuse slot",
			StartAt: testNow.Add(time.Hour),
			EndAt:   testNow.Add(2 * time.Hour),
			SpaceID: spaceID(1),
		})
		assert.NoError(t, err)
	})
}

func TestConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeRepo(), newFakeResolver())

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, teacherActor, CreateRequest{
				Title:   "Race",
				StartAt: testNow.Add(time.Hour),
				EndAt:   testNow.Add(2 * time.Hour),
				SpaceID: spaceID(1),
			})
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrOverlapConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent create may win")
	assert.Equal(t, workers-1, conflicts)
}

func TestApproveAndReject(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin cannot decide", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		_, err := svc.Approve(ctx, teacherActor, res.ID, "self approval")
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = svc.Reject(ctx, otherActor, res.ID, "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("approve sets decision metadata", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		approved, err := svc.Approve(ctx, adminActor, res.ID, "ok")
		require.NoError(t, err)

		assert.Equal(t, StatusApproved, approved.Status)
		require.NotNil(t, approved.ApprovedBy)
		assert.Equal(t, adminActor.ID, approved.ApprovedBy.ID)
		assert.Equal(t, adminActor.Email, approved.ApprovedBy.Email)
		require.NotNil(t, approved.DecisionAt)
		assert.Equal(t, "ok", approved.DecisionNote)
	})

	t.Run("reject records who rejected", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		rejected, err := svc.Reject(ctx, adminActor, res.ID, "room under maintenance")
		require.NoError(t, err)

		assert.Equal(t, StatusRejected, rejected.Status)
		require.NotNil(t, rejected.ApprovedBy)
		assert.Equal(t, adminActor.ID, rejected.ApprovedBy.ID)
		assert.Equal(t, "room under maintenance", rejected.DecisionNote)
	})

	t.Run("decided reservations cannot be decided again", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		_, err := svc.Approve(ctx, adminActor, res.ID, "ok")
		require.NoError(t, err)

		_, err = svc.Reject(ctx, adminActor, res.ID, "changed my mind")
		assert.ErrorIs(t, err, ErrInvalidTransition)

		_, err = svc.Approve(ctx, adminActor, res.ID, "again")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("concurrent decisions cannot both win", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		var wg sync.WaitGroup
		var approveErr, rejectErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, approveErr = svc.Approve(ctx, adminActor, res.ID, "yes")
		}()
		go func() {
			defer wg.Done()
			_, rejectErr = svc.Reject(ctx, adminActor, res.ID, "no")
		}()
		wg.Wait()

		final, err := svc.GetByID(ctx, adminActor, res.ID)
		require.NoError(t, err)

		// Exactly one decision commits; the loser sees the terminal status.
		if approveErr == nil {
			assert.ErrorIs(t, rejectErr, ErrInvalidTransition)
			assert.Equal(t, StatusApproved, final.Status)
		} else {
			assert.ErrorIs(t, approveErr, ErrInvalidTransition)
			assert.NoError(t, rejectErr)
			assert.Equal(t, StatusRejected, final.Status)
		}
	})

	t.Run("concurrent cancel and edit cannot both win", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		title := "Renamed"
		var cancelErr, editErr error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancelErr = svc.Cancel(ctx, teacherActor, res.ID)
		}()
		go func() {
			defer wg.Done()
			_, editErr = svc.Update(ctx, adminActor, res.ID, UpdateRequest{Title: &title})
		}()
		wg.Wait()

		require.NoError(t, cancelErr)

		final, err := svc.GetByID(ctx, adminActor, res.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, final.Status, "an edit must never resurrect a cancelled reservation")
		if editErr != nil {
			assert.ErrorIs(t, editErr, ErrInvalidTransition)
		}
	})

	t.Run("rejected reservations stay rejected", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		_, err := svc.Reject(ctx, adminActor, res.ID, "no")
		require.NoError(t, err)

		_, err = svc.Approve(ctx, adminActor, res.ID, "actually yes")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("creator can cancel and decision fields are cleared", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		_, err := svc.Approve(ctx, adminActor, res.ID, "ok")
		require.NoError(t, err)

		cancelled, err := svc.Cancel(ctx, teacherActor, res.ID)
		require.NoError(t, err)

		assert.Equal(t, StatusCancelled, cancelled.Status)
		assert.Nil(t, cancelled.ApprovedBy)
		assert.Empty(t, cancelled.DecisionNote)
		require.NotNil(t, cancelled.DecisionAt)
		assert.True(t, cancelled.DecisionAt.Equal(testNow))
	})

	t.Run("admin can cancel anyone's reservation", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		_, err := svc.Cancel(ctx, adminActor, res.ID)
		assert.NoError(t, err)
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		_, err := svc.Cancel(ctx, otherActor, res.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("cancelling twice fails predictably", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		_, err := svc.Cancel(ctx, teacherActor, res.ID)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, teacherActor, res.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("only admin can edit, regardless of ownership", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		title := "My own booking"
		_, err := svc.Update(ctx, teacherActor, res.ID, UpdateRequest{Title: &title})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("field edit without interval change skips conflict check", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		title := "Renamed"
		desc := "new description"
		updated, err := svc.Update(ctx, adminActor, res.ID, UpdateRequest{Title: &title, Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, "new description", updated.Description)
	})

	t.Run("interval change re-validates and excludes self", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		// Shifting within its own slot must not conflict with itself.
		newStart := testNow.Add(90 * time.Minute)
		newEnd := testNow.Add(150 * time.Minute)
		updated, err := svc.Update(ctx, adminActor, res.ID, UpdateRequest{StartAt: &newStart, EndAt: &newEnd})
		require.NoError(t, err)
		assert.True(t, updated.StartAt.Equal(newStart))
	})

	t.Run("interval change onto another reservation conflicts", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))
		res := createAt(t, svc, otherActor, 1, testNow.Add(3*time.Hour), testNow.Add(4*time.Hour))

		newStart := testNow.Add(90 * time.Minute)
		newEnd := testNow.Add(150 * time.Minute)
		_, err := svc.Update(ctx, adminActor, res.ID, UpdateRequest{StartAt: &newStart, EndAt: &newEnd})
		assert.ErrorIs(t, err, ErrOverlapConflict)
	})

	t.Run("interval change enforces duration bounds", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		newEnd := testNow.Add(time.Hour + 5*time.Minute)
		_, err := svc.Update(ctx, adminActor, res.ID, UpdateRequest{EndAt: &newEnd})
		assert.ErrorIs(t, err, ErrTooShort)
	})

	t.Run("terminal reservations cannot be edited", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), newFakeResolver())
		res := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

		_, err := svc.Cancel(ctx, teacherActor, res.ID)
		require.NoError(t, err)

		title := "Too late"
		_, err = svc.Update(ctx, adminActor, res.ID, UpdateRequest{Title: &title})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeRepo(), newFakeResolver())

	inWindow := createAt(t, svc, teacherActor, 1, testNow.Add(24*time.Hour), testNow.Add(25*time.Hour))
	rejected := createAt(t, svc, teacherActor, 1, testNow.Add(48*time.Hour), testNow.Add(49*time.Hour))
	_, err := svc.Reject(ctx, adminActor, rejected.ID, "no")
	require.NoError(t, err)
	// Outside the default 30-day window.
	createAt(t, svc, teacherActor, 1, testNow.Add(40*24*time.Hour), testNow.Add(40*24*time.Hour+time.Hour))

	t.Run("non-admin sees only active reservations in the default window", func(t *testing.T) {
		out, err := svc.List(ctx, teacherActor, ListParams{})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, inWindow.ID, out[0].ID)
	})

	t.Run("admin sees all statuses in the window", func(t *testing.T) {
		out, err := svc.List(ctx, adminActor, ListParams{})
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})

	t.Run("explicit window widens the listing", func(t *testing.T) {
		end := testNow.Add(60 * 24 * time.Hour)
		out, err := svc.List(ctx, adminActor, ListParams{End: &end})
		require.NoError(t, err)
		assert.Len(t, out, 3)
	})

	t.Run("inverted window is rejected", func(t *testing.T) {
		start := testNow.Add(2 * time.Hour)
		end := testNow.Add(time.Hour)
		_, err := svc.List(ctx, adminActor, ListParams{Start: &start, End: &end})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("space filter narrows the listing", func(t *testing.T) {
		createAt(t, svc, teacherActor, 2, testNow.Add(24*time.Hour), testNow.Add(25*time.Hour))
		out, err := svc.List(ctx, adminActor, ListParams{SpaceID: 2})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, int64(2), out[0].Space.ID)
	})
}

func TestMine(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeRepo(), newFakeResolver())

	mine := createAt(t, svc, teacherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))
	cancelledMine := createAt(t, svc, teacherActor, 1, testNow.Add(3*time.Hour), testNow.Add(4*time.Hour))
	_, err := svc.Cancel(ctx, teacherActor, cancelledMine.ID)
	require.NoError(t, err)
	// An old reservation, outside even the widened +-365d window.
	old := createAt(t, svc, teacherActor, 1, testNow.Add(-400*24*time.Hour), testNow.Add(-400*24*time.Hour+time.Hour))
	// Someone else's reservation never shows up.
	createAt(t, svc, otherActor, 2, testNow.Add(time.Hour), testNow.Add(2*time.Hour))

	t.Run("without bounds, all own reservations across statuses", func(t *testing.T) {
		out, err := svc.Mine(ctx, teacherActor, nil, nil)
		require.NoError(t, err)
		assert.Len(t, out, 3)
		for _, r := range out {
			assert.Equal(t, teacherActor.ID, r.CreatedBy.ID)
		}
	})

	t.Run("a single bound activates the widened default window", func(t *testing.T) {
		end := testNow.Add(24 * time.Hour)
		out, err := svc.Mine(ctx, teacherActor, nil, &end)
		require.NoError(t, err)
		// The 400-day-old reservation falls outside now-365d.
		ids := make([]int64, len(out))
		for i, r := range out {
			ids[i] = r.ID
		}
		assert.Contains(t, ids, mine.ID)
		assert.Contains(t, ids, cancelledMine.ID)
		assert.NotContains(t, ids, old.ID)
	})
}

func TestBusy(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeRepo(), newFakeResolver())

	second := createAt(t, svc, teacherActor, 1, testNow.Add(3*time.Hour), testNow.Add(4*time.Hour))
	first := createAt(t, svc, otherActor, 1, testNow.Add(time.Hour), testNow.Add(2*time.Hour))
	cancelled := createAt(t, svc, teacherActor, 1, testNow.Add(5*time.Hour), testNow.Add(6*time.Hour))
	_, err := svc.Cancel(ctx, teacherActor, cancelled.ID)
	require.NoError(t, err)

	t.Run("ordered active blocks only", func(t *testing.T) {
		blocks, err := svc.Busy(ctx, 1, testNow, testNow.Add(24*time.Hour))
		require.NoError(t, err)
		require.Len(t, blocks, 2)
		assert.True(t, blocks[0].StartAt.Equal(first.StartAt))
		assert.True(t, blocks[1].StartAt.Equal(second.StartAt))
	})

	t.Run("half-open range excludes touching blocks", func(t *testing.T) {
		// Query window ends exactly where the first block starts.
		blocks, err := svc.Busy(ctx, 1, testNow, testNow.Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, blocks)
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		_, err := svc.Busy(ctx, 1, testNow.Add(time.Hour), testNow)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}
