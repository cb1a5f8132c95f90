package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/domain/entity"
	"github.com/agrisync/agrisync/infrastructure/persistence/sqlite"
)

// Seeds a local database with sample field data for development. Rows go
// through the same repositories as the app so the pending-write queue is
// populated the same way real registrations populate it.
func main() {
	path := os.Getenv("DATABASE_PATH")
	if path == "" {
		path = "agrisync.db"
	}

	store, err := sqlite.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	actors := sqlite.NewActorRepository(store)
	orgs := sqlite.NewOrganizationRepository(store)

	coop := entity.NewActor(entity.CategoryCooperative, "Cooperativa Agrícola de Monapo", "seed-user")
	coopDetail := entity.NewActorDetail(coop.ID, "400123456", "555000123", entity.DeriveLicenseNumber("seed-user"), 38)
	coopAddress := entity.NewAddress(coop.ID, "Nampula", "Monapo", "Monapo-Sede", "Carrupeia")
	coopContact := entity.NewContact(coop.ID, "+258841234567", "", "coop.monapo@example.co.mz")

	rec := outbound.RegistrationRecords{
		Actor:   coop,
		Detail:  coopDetail,
		Address: coopAddress,
		Contact: coopContact,
	}
	if err := actors.CommitRegistration(ctx, rec, seedWrites(rec)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed cooperative: %v\n", err)
		os.Exit(1)
	}

	farmer := entity.NewActor(entity.CategoryFarmer, "Amélia Macamo", "seed-user")
	farmerDetail := entity.NewActorDetail(farmer.ID, "", "", entity.DeriveLicenseNumber("seed-user"), 0)
	farmerRec := outbound.RegistrationRecords{Actor: farmer, Detail: farmerDetail}
	if err := actors.CommitRegistration(ctx, farmerRec, seedWrites(farmerRec)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed farmer: %v\n", err)
		os.Exit(1)
	}

	warehouse := entity.NewWarehouse(coop.ID, "Armazém Central de Monapo", 50000, "Nampula", "Monapo")
	if err := orgs.CreateWarehouse(ctx, warehouse, pendingInsert(entity.TableWarehouses, warehouse)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed warehouse: %v\n", err)
		os.Exit(1)
	}

	txn := entity.NewOrganizationTransaction(farmer.ID, coop.ID, "castanha de caju", 250, 45.5, time.Now().Year(), time.Time{})
	if err := orgs.CreateTransaction(ctx, txn, pendingInsert(entity.TableOrganizationTransactions, txn)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed transaction: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeded %s: 1 cooperative, 1 farmer, 1 warehouse, 1 transaction\n", path)
}

func seedWrites(rec outbound.RegistrationRecords) []*entity.PendingWrite {
	writes := []*entity.PendingWrite{
		pendingInsert(entity.TableActors, rec.Actor),
		pendingInsert(entity.TableActorDetails, rec.Detail),
	}
	if rec.Address != nil {
		writes = append(writes, pendingInsert(entity.TableAddresses, rec.Address))
	}
	if rec.Contact != nil {
		writes = append(writes, pendingInsert(entity.TableContacts, rec.Contact))
	}
	return writes
}

func pendingInsert(table string, v interface{}) *entity.PendingWrite {
	payload, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode %s row: %v\n", table, err)
		os.Exit(1)
	}
	return entity.NewPendingWrite(entity.OpInsert, table, payload)
}
