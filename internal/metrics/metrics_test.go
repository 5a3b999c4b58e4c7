package metrics_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/bikeshare-stats/internal/metrics"
)

func TestMetrics_ObserveLoad(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveLoad("chicago", 20*time.Millisecond, 300, nil)
	m.ObserveLoad("chicago", time.Millisecond, 0, errors.New("boom"))
	m.CountQuery("summary")

	count, err := testutil.GatherAndCount(reg, "bikeshare_dataset_loads_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count, "one series per outcome")

	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP bikeshare_dataset_records Records in the most recently loaded trip log per city.
# TYPE bikeshare_dataset_records gauge
bikeshare_dataset_records{city="chicago"} 300
`), "bikeshare_dataset_records"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	m.ObserveLoad("chicago", time.Second, 1, nil)
	m.CountQuery("raw")
}
