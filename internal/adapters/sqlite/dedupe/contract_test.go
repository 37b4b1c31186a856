package dedupe

import (
	"path/filepath"
	"testing"

	"github.com/Lamplight-Studio/idea-print-agent/internal/adapters/contracttest"
	dedupeport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/dedupe"
)

func factory(t *testing.T) (dedupeport.Store, func()) {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "dedupe.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, func() { _ = s.Close() }
}

func TestContract_SQLiteDedupeStore(t *testing.T) {
	contracttest.RunDedupeStore(t, factory)
}

func TestContract_SQLiteDedupeStoreConcurrency(t *testing.T) {
	contracttest.RunDedupeStoreConcurrency(t, factory)
}

func TestContract_SQLiteDedupeStorePrune(t *testing.T) {
	contracttest.RunDedupeStorePrune(t, factory)
}
