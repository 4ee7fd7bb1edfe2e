package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/gatelaunch/internal/domain"
)

func newProofService(t *testing.T, f *fixture) *ProofService {
	return NewProofService(ProofDependencies{
		Dir:         t.TempDir(),
		MaxBytes:    1024,
		OrderRepo:   f.store.Orders,
		ReceiptRepo: f.store.Receipts,
		Now:         clock,
	})
}

func TestProofSaveAndOpenByOwner(t *testing.T) {
	f := newFixture(t)
	proofs := newProofService(t, f)
	orders := NewOrderService(OrderDependencies{OrderRepo: f.store.Orders, Publisher: f.notifications, Now: clock})
	ctx := context.Background()

	url, err := proofs.Save(ctx, principal("u1", domain.RoleUser), "Receipt.PNG", []byte("png-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, domain.ProofURLPrefix))
	assert.True(t, strings.HasSuffix(url, ".png"))
	name := strings.TrimPrefix(url, domain.ProofURLPrefix)

	in := validOrder()
	in.ProofURL = url
	_, err = orders.Create(ctx, principal("u1", domain.RoleUser), in)
	require.NoError(t, err)

	path, err := proofs.Open(ctx, principal("u1", domain.RoleUser), name)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, name))

	_, err = proofs.Open(ctx, principal("s1", domain.RoleSupervisor), name)
	require.NoError(t, err)

	_, err = proofs.Open(ctx, principal("u2", domain.RoleUser), name)
	requireStatus(t, err, 403)
}

func TestProofSaveValidation(t *testing.T) {
	f := newFixture(t)
	proofs := newProofService(t, f)
	ctx := context.Background()

	_, err := proofs.Save(ctx, principal("u1", domain.RoleUser), "x.png", nil)
	requireStatus(t, err, 400)
	_, err = proofs.Save(ctx, principal("u1", domain.RoleUser), "x.gif", []byte("gif"))
	requireStatus(t, err, 400)
	_, err = proofs.Save(ctx, principal("u1", domain.RoleUser), "x.png", make([]byte, 2048))
	requireStatus(t, err, 413)
}

func TestProofOpenRejectsBadNames(t *testing.T) {
	f := newFixture(t)
	proofs := newProofService(t, f)
	ctx := context.Background()

	_, err := proofs.Open(ctx, principal("a1", domain.RoleAdmin), "../data.json")
	requireStatus(t, err, 400)
	_, err = proofs.Open(ctx, principal("a1", domain.RoleAdmin), "123-missing.png")
	requireStatus(t, err, 404)
}

func TestProofReferenceByAnotherUserGrantsNothing(t *testing.T) {
	f := newFixture(t)
	proofs := newProofService(t, f)
	receipts := NewReceiptService(ReceiptDependencies{ReceiptRepo: f.store.Receipts, Publisher: f.notifications, Now: clock})
	ctx := context.Background()

	url, err := proofs.Save(ctx, principal("u1", domain.RoleUser), "mine.jpg", []byte("jpg-bytes"))
	require.NoError(t, err)
	name := strings.TrimPrefix(url, domain.ProofURLPrefix)

	// u2 learns the locator and files a receipt pointing at it.
	_, err = receipts.Create(ctx, principal("u2", domain.RoleUser), ReceiptCreateInput{
		Receiver:   "01147794004",
		Sender:     "01000000000",
		Amount:     10,
		PaymentRef: "P-2",
		ProofURL:   url,
	})
	require.NoError(t, err)

	_, err = proofs.Open(ctx, principal("u2", domain.RoleUser), name)
	requireStatus(t, err, 403)

	_, err = proofs.Open(ctx, principal("u1", domain.RoleUser), name)
	assert.NoError(t, err)
}

func TestProofWithoutUploaderFallsBackToReferences(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	proofs := NewProofService(ProofDependencies{Dir: dir, OrderRepo: f.store.Orders, ReceiptRepo: f.store.Receipts, Now: clock})
	orders := NewOrderService(OrderDependencies{OrderRepo: f.store.Orders, Publisher: f.notifications, Now: clock})
	ctx := context.Background()

	name := "100-legacy.png"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("png"), 0o600))
	in := validOrder()
	in.ProofURL = domain.ProofURLPrefix + name
	_, err := orders.Create(ctx, principal("u1", domain.RoleUser), in)
	require.NoError(t, err)

	allowed, err := proofs.CanAccess(ctx, principal("u1", domain.RoleUser), name)
	require.NoError(t, err)
	assert.True(t, allowed)
	allowed, err = proofs.CanAccess(ctx, principal("u2", domain.RoleUser), name)
	require.NoError(t, err)
	assert.False(t, allowed)
}
