package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/entity"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agrisync.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agrisync.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestPendingWrites_FIFOAndDurability(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "agrisync.db")

	store, err := Open(path)
	require.NoError(t, err)
	queue := NewPendingWriteRepository(store)

	first := entity.NewPendingWrite(entity.OpInsert, entity.TableActors, json.RawMessage(`{"id":"a"}`))
	second := entity.NewPendingWrite(entity.OpInsert, entity.TableActorDetails, json.RawMessage(`{"id":"b"}`))
	third := entity.NewPendingWrite(entity.OpDelete, entity.TableWarehouses, json.RawMessage(`{"id":"c"}`))

	require.NoError(t, queue.Enqueue(ctx, first))
	require.NoError(t, queue.Enqueue(ctx, second))
	require.NoError(t, queue.Enqueue(ctx, third))
	assert.Less(t, first.Seq, second.Seq)
	assert.Less(t, second.Seq, third.Seq)

	// Simulated restart: the queue must survive reopening the file.
	require.NoError(t, store.Close())
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()
	queue = NewPendingWriteRepository(store)

	writes, err := queue.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, writes, 3)
	assert.Equal(t, entity.TableActors, writes[0].TableName)
	assert.Equal(t, entity.TableActorDetails, writes[1].TableName)
	assert.Equal(t, entity.TableWarehouses, writes[2].TableName)
	assert.JSONEq(t, `{"id":"a"}`, string(writes[0].Payload))

	require.NoError(t, queue.Remove(ctx, writes[0].Seq))
	count, err := queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPendingWrites_IncrementRetry(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	queue := NewPendingWriteRepository(store)

	write := entity.NewPendingWrite(entity.OpUpsert, entity.TableActors, json.RawMessage(`{}`))
	require.NoError(t, queue.Enqueue(ctx, write))
	require.NoError(t, queue.IncrementRetry(ctx, write.Seq))
	require.NoError(t, queue.IncrementRetry(ctx, write.Seq))

	writes, err := queue.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, writes, 1)
	assert.Equal(t, 2, writes[0].RetryCount)
}

func registrationFor(category, name, nuit, nuel string) outbound.RegistrationRecords {
	actor := entity.NewActor(category, name, "user-1")
	detail := entity.NewActorDetail(actor.ID, nuit, nuel, entity.DeriveLicenseNumber("user-1"), 0)
	return outbound.RegistrationRecords{Actor: actor, Detail: detail}
}

func TestCommitRegistration_AtomicWithQueue(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	actors := NewActorRepository(store)
	queue := NewPendingWriteRepository(store)

	rec := registrationFor(entity.CategoryCooperative, "Coop Nampula", "123456789", "555001")
	rec.Address = entity.NewAddress(rec.Actor.ID, "Nampula", "Monapo", "", "")
	writes := []*entity.PendingWrite{
		entity.NewPendingWrite(entity.OpInsert, entity.TableActors, mustJSON(t, rec.Actor)),
		entity.NewPendingWrite(entity.OpInsert, entity.TableActorDetails, mustJSON(t, rec.Detail)),
		entity.NewPendingWrite(entity.OpInsert, entity.TableAddresses, mustJSON(t, rec.Address)),
	}

	require.NoError(t, actors.CommitRegistration(ctx, rec, writes))

	found, err := actors.FindByID(ctx, rec.Actor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coop Nampula", found.Name)

	detail, err := actors.FindDetailByActorID(ctx, rec.Actor.ID)
	require.NoError(t, err)
	assert.Equal(t, "123456789", detail.Nuit)

	count, err := queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCreateGroupManager_QueuesWrite(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	actors := NewActorRepository(store)
	queue := NewPendingWriteRepository(store)

	rec := registrationFor(entity.CategoryGroup, "Grupo de Poupança", "", "")
	require.NoError(t, actors.CommitRegistration(ctx, rec, nil))

	manager := entity.NewGroupManager(rec.Actor.ID, "Joaquim Mutola", "+258841112223")
	write := entity.NewPendingWrite(entity.OpInsert, entity.TableGroupManagers, mustJSON(t, manager))
	require.NoError(t, actors.CreateGroupManager(ctx, manager, write))

	count, err := queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	pending, err := queue.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, entity.TableGroupManagers, pending[0].TableName)
}

func TestFindByID_NotFound(t *testing.T) {
	store, _ := openTestStore(t)
	actors := NewActorRepository(store)

	_, err := actors.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, outbound.ErrActorNotFound)
}

func TestFindOrganizations_MatchesRealIdentifiers(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	actors := NewActorRepository(store)

	rec := registrationFor(entity.CategoryCooperative, "Coop A", "123456789", "555001")
	require.NoError(t, actors.CommitRegistration(ctx, rec, nil))

	matches, err := actors.FindOrganizationsByNuit(ctx, "123456789")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, rec.Actor.ID, matches[0].ActorID)

	matches, err = actors.FindOrganizationsByNuel(ctx, "555001")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

// Placeholder identifiers stored on older records must never produce
// duplicate hits, whatever the probe value.
func TestFindOrganizations_PlaceholdersNeverMatch(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	actors := NewActorRepository(store)

	placeholders := []string{"", "0", "N/A", "000000000"}
	for i, p := range placeholders {
		rec := registrationFor(entity.CategoryAssociation, "Assoc", p, p)
		rec.Actor.Name = rec.Actor.Name + string(rune('A'+i))
		require.NoError(t, actors.CommitRegistration(ctx, rec, nil))
	}

	for _, p := range placeholders {
		matches, err := actors.FindOrganizationsByNuit(ctx, p)
		require.NoError(t, err)
		assert.Empty(t, matches, "probe %q", p)

		matches, err = actors.FindOrganizationsByNuel(ctx, p)
		require.NoError(t, err)
		assert.Empty(t, matches, "probe %q", p)
	}
}

// Two organizations may share a name; only identifiers make a duplicate.
func TestFindOrganizations_NameCollisionIsNotDuplicate(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	actors := NewActorRepository(store)

	first := registrationFor(entity.CategoryCooperative, "Cooperativa Esperança", "111111119", "")
	second := registrationFor(entity.CategoryCooperative, "Cooperativa Esperança", "222222229", "")
	require.NoError(t, actors.CommitRegistration(ctx, first, nil))
	require.NoError(t, actors.CommitRegistration(ctx, second, nil))

	matches, err := actors.FindOrganizationsByNuit(ctx, "111111119")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, first.Actor.ID, matches[0].ActorID)
}

// Farmers are not organizations; their identifiers never join the
// duplicate probe.
func TestFindOrganizations_IgnoresFarmers(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	actors := NewActorRepository(store)

	rec := registrationFor(entity.CategoryFarmer, "Amélia", "123456789", "")
	require.NoError(t, actors.CommitRegistration(ctx, rec, nil))

	matches, err := actors.FindOrganizationsByNuit(ctx, "123456789")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindAll_FiltersAndCounts(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	actors := NewActorRepository(store)

	require.NoError(t, actors.CommitRegistration(ctx, registrationFor(entity.CategoryFarmer, "Amélia Macamo", "", ""), nil))
	require.NoError(t, actors.CommitRegistration(ctx, registrationFor(entity.CategoryFarmer, "Carlos Tembe", "", ""), nil))
	require.NoError(t, actors.CommitRegistration(ctx, registrationFor(entity.CategoryCooperative, "Coop Nampula", "123456789", ""), nil))

	results, total, err := actors.FindAll(ctx, 0, 10, outbound.ActorFilters{Category: entity.CategoryFarmer})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, results, 2)

	results, total, err = actors.FindAll(ctx, 0, 10, outbound.ActorFilters{Name: "Nampula"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, "Coop Nampula", results[0].Name)
}

func TestSyncState_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	repo := NewSyncStateRepository(store)

	last, err := repo.LastSyncedAt(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.SetLastSyncedAt(ctx, now))

	last, err = repo.LastSyncedAt(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(now))
}

func TestOrganizationRepository_TransactionsAndWarehouses(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	actors := NewActorRepository(store)
	orgs := NewOrganizationRepository(store)
	queue := NewPendingWriteRepository(store)

	seller := registrationFor(entity.CategoryFarmer, "Amélia", "", "")
	buyer := registrationFor(entity.CategoryCooperative, "Coop", "123456789", "")
	require.NoError(t, actors.CommitRegistration(ctx, seller, nil))
	require.NoError(t, actors.CommitRegistration(ctx, buyer, nil))

	warehouse := entity.NewWarehouse(buyer.Actor.ID, "Armazém Central", 50000, "Nampula", "Monapo")
	require.NoError(t, orgs.CreateWarehouse(ctx, warehouse,
		entity.NewPendingWrite(entity.OpInsert, entity.TableWarehouses, mustJSON(t, warehouse))))

	warehouses, err := orgs.ListWarehouses(ctx, buyer.Actor.ID)
	require.NoError(t, err)
	require.Len(t, warehouses, 1)

	txn := entity.NewOrganizationTransaction(seller.Actor.ID, buyer.Actor.ID, "cashew", 250, 45.5, 2026, time.Time{})
	require.NoError(t, orgs.CreateTransaction(ctx, txn,
		entity.NewPendingWrite(entity.OpInsert, entity.TableOrganizationTransactions, mustJSON(t, txn))))

	txns, err := orgs.ListTransactions(ctx, seller.Actor.ID, 2026)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.InDelta(t, 250*45.5, txns[0].TotalAmount, 0.001)

	txns, err = orgs.ListTransactions(ctx, seller.Actor.ID, 2030)
	require.NoError(t, err)
	assert.Empty(t, txns)

	count, err := queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNotifier_SignalsOnCommit(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	actors := NewActorRepository(store)

	ch, cancel := store.Notifier().Watch(entity.TableActors)
	defer cancel()

	rec := registrationFor(entity.CategoryFarmer, "Amélia", "", "")
	require.NoError(t, actors.CommitRegistration(ctx, rec, nil))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a change signal for the actors table")
	}
}

func TestVaultKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	require.NoError(t, store.PutKV(ctx, "k", []byte("v1")))
	require.NoError(t, store.PutKV(ctx, "k", []byte("v2")))

	value, err := store.GetKV(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)

	require.NoError(t, store.DeleteKV(ctx, "k"))
	_, err = store.GetKV(ctx, "k")
	assert.Error(t, err)
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
