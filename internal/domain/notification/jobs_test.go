package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

type fakeRepo struct {
	mu    sync.Mutex
	items []*Notification
}

func (r *fakeRepo) Create(_ context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	return nil
}

func (r *fakeRepo) ExistsUnread(_ context.Context, userID id.ID, link string, typ Type) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.UserID == userID && n.Link == link && n.Type == typ && !n.IsRead {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) ListLatest(_ context.Context, userID id.ID, limit int) ([]*Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Notification
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		if r.items[i].UserID == userID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *fakeRepo) CountUnread(_ context.Context, userID id.ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, it := range r.items {
		if it.UserID == userID && !it.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) MarkRead(_ context.Context, userID, notificationID id.ID) (*Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == notificationID && it.UserID == userID {
			it.IsRead = true
			return it, nil
		}
	}
	return nil, apperror.NewNotFound("notification", notificationID)
}

func (r *fakeRepo) MarkAllRead(_ context.Context, userID id.ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, it := range r.items {
		if it.UserID == userID && !it.IsRead {
			it.IsRead = true
			n++
		}
	}
	return n, nil
}

type fakeSource struct {
	lowStock []LowStockProduct
	overdue  map[string][]OverdueDocument
	cutoffs  []time.Time
}

func (s *fakeSource) LowStockProducts(context.Context) ([]LowStockProduct, error) {
	return s.lowStock, nil
}

func (s *fakeSource) OverdueDocuments(_ context.Context, kind string, cutoff time.Time) ([]OverdueDocument, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	return s.overdue[kind], nil
}

type fakeTx struct {
	calls int
}

func (f *fakeTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type recordingPublisher struct {
	published []*Notification
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, n *Notification) error {
	p.published = append(p.published, n)
	return p.err
}

func TestLowStock_DeduplicatesUnread(t *testing.T) {
	ctx := context.Background()
	owner := id.New()
	productID := id.New()
	repo := &fakeRepo{}
	pub := &recordingPublisher{}
	source := &fakeSource{lowStock: []LowStockProduct{
		{ProductID: productID, ShopID: id.New(), OwnerID: owner, Name: "Rice 5kg", Quantity: 3},
	}}
	jobs := NewJobs(NewService(repo, &fakeTx{}, pub), source, 0)

	created, err := jobs.LowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, "Rice 5kg is running low on stock (Current: 3).", repo.items[0].Message)
	assert.Equal(t, "/products/"+productID.String(), repo.items[0].Link)

	created, err = jobs.LowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created, "unread duplicate is skipped")

	_, err = jobs.svc.MarkAllRead(ctx, owner)
	require.NoError(t, err)

	created, err = jobs.LowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created, "a read notification does not block a new one")
	assert.Len(t, pub.published, 2)
}

func TestOverdue_UsesGracePeriodAndLinks(t *testing.T) {
	ctx := context.Background()
	saleID, purchaseID := id.New(), id.New()
	source := &fakeSource{overdue: map[string][]OverdueDocument{
		"sale":     {{DocumentID: saleID, OwnerID: id.New(), CounterpartyName: "Hari", AmountDue: types.MustMoney("150")}},
		"purchase": {{DocumentID: purchaseID, OwnerID: id.New(), CounterpartyName: "Acme", AmountDue: types.MustMoney("75.5")}},
	}}
	repo := &fakeRepo{}
	jobs := NewJobs(NewService(repo, &fakeTx{}, nil), source, 0)
	now := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.RunAll(ctx))

	require.Len(t, repo.items, 2)
	assert.Equal(t, TypeCollectionOverdue, repo.items[0].Type)
	assert.Equal(t, "/sales/"+saleID.String(), repo.items[0].Link)
	assert.Equal(t, "Payment of Rs. 150.00 from Hari is overdue.", repo.items[0].Message)
	assert.Equal(t, TypePaymentDue, repo.items[1].Type)
	assert.Equal(t, "Payment of Rs. 75.50 to Acme is due.", repo.items[1].Message)

	for _, c := range source.cutoffs {
		assert.Equal(t, now.Add(-15*24*time.Hour), c)
	}
}

func TestNotify_PublishFailureFailsTheTransaction(t *testing.T) {
	repo := &fakeRepo{}
	txm := &fakeTx{}
	svc := NewService(repo, txm, &recordingPublisher{err: errors.New("outbox insert failed")})

	ok, err := svc.Notify(context.Background(), New(id.New(), id.New(), TypeLowStock, "m", "/products/1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outbox insert failed")
	assert.False(t, ok)
	assert.Equal(t, 1, txm.calls)
}

func TestNotify_DuplicateSkipsPublisher(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	pub := &recordingPublisher{}
	svc := NewService(repo, &fakeTx{}, pub)
	owner := id.New()

	ok, err := svc.Notify(ctx, New(id.New(), owner, TypePaymentDue, "due", "/purchases/1"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Notify(ctx, New(id.New(), owner, TypePaymentDue, "due", "/purchases/1"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, pub.published, 1)
}

func TestInbox_MarkReadOtherUser(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo, &fakeTx{}, nil)
	owner, other := id.New(), id.New()

	n := New(id.New(), owner, TypePaymentDue, "due", "/purchases/1")
	_, err := svc.Notify(ctx, n)
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, other, n.ID)
	assert.True(t, apperror.IsNotFound(err))

	inbox, err := svc.Inbox(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inbox.UnreadCount)

	_, err = svc.MarkRead(ctx, owner, n.ID)
	require.NoError(t, err)
	inbox, err = svc.Inbox(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inbox.UnreadCount)
	assert.Len(t, inbox.Items, 1)
}
