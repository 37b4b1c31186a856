package dedupe

import (
	"testing"

	"github.com/Lamplight-Studio/idea-print-agent/internal/adapters/contracttest"
	dedupeport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/dedupe"
)

func factory(t *testing.T) (dedupeport.Store, func()) {
	t.Helper()
	return NewStore(), nil
}

func TestContract_DedupeStore(t *testing.T) {
	contracttest.RunDedupeStore(t, factory)
}

func TestContract_DedupeStoreConcurrency(t *testing.T) {
	contracttest.RunDedupeStoreConcurrency(t, factory)
}

func TestContract_DedupeStorePrune(t *testing.T) {
	contracttest.RunDedupeStorePrune(t, factory)
}
