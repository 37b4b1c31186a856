package dedupe_test

import (
	"testing"

	"github.com/Lamplight-Studio/idea-print-agent/internal/adapters/contracttest"
	"github.com/Lamplight-Studio/idea-print-agent/internal/adapters/postgres/dedupe"
	"github.com/Lamplight-Studio/idea-print-agent/internal/adapters/postgres/testutil"
	dedupeport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/dedupe"
)

func TestContract_PostgresDedupeStore(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunDedupeStore(t, func(t *testing.T) (dedupeport.Store, func()) {
		t.Helper()
		return dedupe.NewStore(pool), nil
	})
}

func TestContract_PostgresDedupeStoreConcurrency(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunDedupeStoreConcurrency(t, func(t *testing.T) (dedupeport.Store, func()) {
		t.Helper()
		return dedupe.NewStore(pool), nil
	})
}

func TestContract_PostgresDedupeStorePrune(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunDedupeStorePrune(t, func(t *testing.T) (dedupeport.Store, func()) {
		t.Helper()
		return dedupe.NewStore(pool), nil
	})
}
