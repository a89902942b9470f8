package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveLedgerSync(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLedgerSync("mint_badge", true)
	m.ObserveLedgerSync("mint_badge", false)
	m.ObserveLedgerSync("mint_badge", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerSyncTotal.WithLabelValues("mint_badge", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LedgerSyncTotal.WithLabelValues("mint_badge", "failed")))
}

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
