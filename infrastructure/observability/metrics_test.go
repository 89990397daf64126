package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"incoin/config"
	"incoin/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true

	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.start(resource.Default(), reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) map[attribute.Distinct]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[attribute.Distinct]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				out[dp.Attributes.Equivalent()] += dp.Value
			}
		}
	}
	return out
}

func TestMetricsProvider_Disabled(t *testing.T) {
	mp := NewMetricsProvider(config.NewTestConfig())
	require.NoError(t, mp.Initialize(context.Background()))

	assert.NotPanics(t, func() {
		ctx := context.Background()
		mp.RecordCommand(ctx, "work", time.Millisecond, nil)
		mp.RecordSettlement(ctx, JobPayroll, time.Second, nil)
		mp.RecordStoreOperation(ctx, "get_user", time.Millisecond, errors.New("down"))
		mp.HandleEvent(ctx, events.BalanceChangedEvent{})
	})
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_RecordStoreOperation(t *testing.T) {
	mp, reader := newTestProvider(t)
	ctx := context.Background()

	mp.RecordStoreOperation(ctx, "get_user", 2*time.Millisecond, nil)
	mp.RecordStoreOperation(ctx, "get_user", 3*time.Millisecond, nil)
	mp.RecordStoreOperation(ctx, "get_user", time.Millisecond, errors.New("down"))

	sums := collectSum(t, reader, StoreOperationsTotal)
	ok := attribute.NewSet(attribute.String(LabelOperation, "get_user"), attribute.String(LabelStatus, StatusOK))
	failed := attribute.NewSet(attribute.String(LabelOperation, "get_user"), attribute.String(LabelStatus, StatusError))
	assert.Equal(t, int64(2), sums[ok.Equivalent()])
	assert.Equal(t, int64(1), sums[failed.Equivalent()])
}

func TestMetricsProvider_HandleEvent(t *testing.T) {
	mp, reader := newTestProvider(t)
	ctx := context.Background()

	mp.HandleEvent(ctx, events.BalanceChangedEvent{Reason: events.ReasonDeposit, WalletDelta: -500, BankDelta: 500})
	mp.HandleEvent(ctx, events.CompanyCreatedEvent{CompanyID: "c1"})

	moved := collectSum(t, reader, BalanceMovedTotal)
	deposit := attribute.NewSet(attribute.String(LabelReason, string(events.ReasonDeposit)))
	assert.Equal(t, int64(1000), moved[deposit.Equivalent()])

	counted := collectSum(t, reader, EventsTotal)
	created := attribute.NewSet(attribute.String(LabelEventType, string(events.EventTypeCompanyCreated)))
	assert.Equal(t, int64(1), counted[created.Equivalent()])
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "carrier-pigeon"

	err := NewMetricsProvider(cfg).Initialize(context.Background())
	assert.Error(t, err)
}
