package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"incoin/config"
	"incoin/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0}

// MetricsProvider manages OpenTelemetry metrics for the bot
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	commandsCounter        metric.Int64Counter
	commandDurationHist    metric.Float64Histogram
	eventsCounter          metric.Int64Counter
	balanceChangesCounter  metric.Int64Counter
	balanceMovedCounter    metric.Int64Counter
	settlementRunsCounter  metric.Int64Counter
	settlementDurationHist metric.Float64Histogram
	storeOperationsCounter metric.Int64Counter
	storeOperationDuration metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	if err := mp.start(res, reader); err != nil {
		return err
	}

	otel.SetMeterProvider(mp.meterProvider)
	log.Info("Metrics provider initialized successfully")
	return nil
}

// start builds the meter provider around reader. Callers hold mp.mu.
func (mp *MetricsProvider) start(res *resource.Resource, reader sdkmetric.Reader) error {
	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("incoin")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	if mp.commandsCounter, err = mp.meter.Int64Counter(
		CommandsTotal,
		metric.WithDescription("Total number of slash commands handled"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create commands counter: %w", err)
	}

	if mp.commandDurationHist, err = mp.meter.Float64Histogram(
		CommandDuration,
		metric.WithDescription("Duration of slash command handling in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return fmt.Errorf("failed to create command duration histogram: %w", err)
	}

	if mp.eventsCounter, err = mp.meter.Int64Counter(
		EventsTotal,
		metric.WithDescription("Total number of economy events emitted"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create events counter: %w", err)
	}

	if mp.balanceChangesCounter, err = mp.meter.Int64Counter(
		BalanceChangesTotal,
		metric.WithDescription("Total number of balance changes"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create balance changes counter: %w", err)
	}

	if mp.balanceMovedCounter, err = mp.meter.Int64Counter(
		BalanceMovedTotal,
		metric.WithDescription("Absolute amount of coins moved by balance changes"),
		metric.WithUnit("{coin}"),
	); err != nil {
		return fmt.Errorf("failed to create balance moved counter: %w", err)
	}

	if mp.settlementRunsCounter, err = mp.meter.Int64Counter(
		SettlementRunsTotal,
		metric.WithDescription("Total number of scheduled settlement runs"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create settlement runs counter: %w", err)
	}

	if mp.settlementDurationHist, err = mp.meter.Float64Histogram(
		SettlementDuration,
		metric.WithDescription("Duration of scheduled settlement runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return fmt.Errorf("failed to create settlement duration histogram: %w", err)
	}

	if mp.storeOperationsCounter, err = mp.meter.Int64Counter(
		StoreOperationsTotal,
		metric.WithDescription("Total number of remote record store operations"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create store operations counter: %w", err)
	}

	if mp.storeOperationDuration, err = mp.meter.Float64Histogram(
		StoreOperationDuration,
		metric.WithDescription("Duration of remote record store operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return fmt.Errorf("failed to create store operation duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.enabled = false
	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordCommand records one handled slash command
func (mp *MetricsProvider) RecordCommand(ctx context.Context, command string, duration time.Duration, err error) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelCommand, command),
		attribute.String(LabelStatus, status(err)),
	)
	mp.commandsCounter.Add(ctx, 1, attrs)
	mp.commandDurationHist.Record(ctx, duration.Seconds(), attrs)
}

// RecordSettlement records one run of a scheduled job
func (mp *MetricsProvider) RecordSettlement(ctx context.Context, job string, duration time.Duration, err error) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelJob, job),
		attribute.String(LabelStatus, status(err)),
	)
	mp.settlementRunsCounter.Add(ctx, 1, attrs)
	mp.settlementDurationHist.Record(ctx, duration.Seconds(), attrs)
}

// RecordStoreOperation implements store.Observer
func (mp *MetricsProvider) RecordStoreOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelOperation, operation),
		attribute.String(LabelStatus, status(err)),
	)
	mp.storeOperationsCounter.Add(ctx, 1, attrs)
	mp.storeOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// HandleEvent is an events.Handler counting economy events
func (mp *MetricsProvider) HandleEvent(ctx context.Context, event events.Event) {
	if !mp.isEnabled() {
		return
	}

	mp.eventsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelEventType, string(event.Type())),
	))

	if bc, ok := event.(events.BalanceChangedEvent); ok {
		attrs := metric.WithAttributes(attribute.String(LabelReason, string(bc.Reason)))
		mp.balanceChangesCounter.Add(ctx, 1, attrs)
		mp.balanceMovedCounter.Add(ctx, abs(bc.WalletDelta)+abs(bc.BankDelta), attrs)
	}
}

// Attach subscribes the provider to every event type on bus
func (mp *MetricsProvider) Attach(bus *events.Bus) {
	bus.SubscribeAll(mp.HandleEvent)
}

func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
