package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/diem/reference-wallet-sub000/internal/config"
	"github.com/diem/reference-wallet-sub000/internal/domain"
)

//go:generate mockgen -source=consumer.go -destination=mocks/mock.go
//go:generate mockgen -destination=mocks/sarama_mock.go -package=mock_kafka github.com/IBM/sarama Consumer,PartitionConsumer

var (
	processedEventsCounter  prometheus.Counter
	unmarshalErrorsCounter  prometheus.Counter
	processingErrorsCounter prometheus.Counter
	retriesCounter          prometheus.Counter
)

func init() {
	processedEventsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_consumer_processed_events_total",
		Help: "Total number of processed settlement events",
	})

	unmarshalErrorsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_consumer_unmarshal_errors_total",
		Help: "Total number of settlement events that failed to unmarshal",
	})

	processingErrorsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_consumer_processing_errors_total",
		Help: "Total number of settlement events that failed to process",
	})

	retriesCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_consumer_retries_total",
		Help: "Total number of settlement event processing retries",
	})
}

// Wallet is the slice of the wallet service the consumer needs.
type Wallet interface {
	RecordSettlement(ctx context.Context, ev domain.SettlementEvent) error
}

type SettlementConsumerInterface interface {
	Consume(ctx context.Context) error
	Close() error
}

// SettlementConsumer credits wallet accounts from the settlement topic.
type SettlementConsumer struct {
	topic                         string
	cfg                           config.Config
	logger                        *slog.Logger
	wg                            sync.WaitGroup
	wallet                        Wallet
	consumer                      sarama.Consumer
	treatUnmarshalErrorAsCritical bool
	validator                     *validator.Validate

	processedEventsCounter  prometheus.Counter
	unmarshalErrorsCounter  prometheus.Counter
	processingErrorsCounter prometheus.Counter
	retriesCounter          prometheus.Counter

	errChan chan error
}

func NewSettlementConsumer(ctx context.Context, cfg config.Config, logger *slog.Logger, saramaConfig *sarama.Config, consumer sarama.Consumer, wallet Wallet) (*SettlementConsumer, error) {
	validate := validator.New()
	errChan := make(chan error, 10)
	return &SettlementConsumer{
		topic:                         cfg.Kafka.Topic,
		cfg:                           cfg,
		logger:                        logger,
		wallet:                        wallet,
		consumer:                      consumer,
		errChan:                       errChan,
		treatUnmarshalErrorAsCritical: cfg.Kafka.TreatUnmarshalErrorAsCritical,
		processedEventsCounter:        processedEventsCounter,
		unmarshalErrorsCounter:        unmarshalErrorsCounter,
		processingErrorsCounter:       processingErrorsCounter,
		retriesCounter:                retriesCounter,
		validator:                     validate,
	}, nil
}

func (s *SettlementConsumer) Consume(ctx context.Context) error {
	partitions, err := s.consumer.Partitions(s.topic)
	if err != nil {
		s.logger.Error("failed to get partitions", "error", err)
		return err
	}

	var mu sync.Mutex
	var allErrors []error

	for _, partition := range partitions {
		pc, err := s.consumer.ConsumePartition(s.topic, partition, sarama.OffsetNewest)
		if err != nil {
			s.logger.Error("failed to consume partition", "partition", partition, "error", err)
			mu.Lock()
			allErrors = append(allErrors, err)
			mu.Unlock()
			continue
		}
		if pc == nil {
			s.logger.Error("partition consumer is nil", "partition", partition)
			continue
		}

		s.wg.Add(1)

		go func(pc sarama.PartitionConsumer, partition int32) {
			defer s.wg.Done()
			defer func() {
				if err := pc.Close(); err != nil {
					s.logger.Error("failed to close partition consumer", "partition", partition, "error", err)
					mu.Lock()
					allErrors = append(allErrors, err)
					mu.Unlock()
				}
			}()

			for {
				select {
				case msg, ok := <-pc.Messages():
					if !ok {
						s.logger.Info("message channel closed", "partition", partition)
						return
					}

					s.logger.Info("received settlement event", "partition", msg.Partition, "offset", msg.Offset)

					var event domain.SettlementEvent
					if err := json.Unmarshal(msg.Value, &event); err != nil {
						s.logger.Error("failed to unmarshal settlement event", "error", err)
						s.unmarshalErrorsCounter.Inc()
						if s.treatUnmarshalErrorAsCritical {
							select {
							case s.errChan <- fmt.Errorf("failed to unmarshal settlement event at offset %d: %w", msg.Offset, err):
							case <-ctx.Done():
								return
							}
							return
						}
						continue
					}

					if err := s.validateEvent(event); err != nil {
						s.logger.Error("kafka.consumer.Consume: invalid settlement event", slog.String("error", err.Error()))
						continue
					}

					var processErr error
					for attempt := 0; attempt <= s.cfg.Kafka.MaxRetries; attempt++ {
						if attempt > 0 {
							s.retriesCounter.Inc()
						}
						processErr = s.processEvent(ctx, event)
						if processErr == nil {
							s.processedEventsCounter.Inc()
							break
						}
						if attempt < s.cfg.Kafka.MaxRetries {
							s.logger.Warn("attempt to record settlement failed",
								slog.Int("attempt", attempt),
								slog.Any("partition", partition),
								slog.String("error", processErr.Error()),
							)
							backOff := s.cfg.Kafka.InitialBackoff * time.Duration(1<<attempt)
							select {
							case <-time.After(backOff):
								continue
							case <-ctx.Done():
								s.logger.Info("shutting down settlement consumer due to context cancellation",
									slog.Any("partition", partition))
								return
							}
						}

						s.logger.Error("failed to record settlement after max retries",
							slog.String("error", processErr.Error()),
							slog.Any("partition", partition))

						s.processingErrorsCounter.Inc()
					}

					if processErr != nil {
						mu.Lock()
						allErrors = append(allErrors, processErr)
						mu.Unlock()
					}

				case err, ok := <-pc.Errors():
					if !ok {
						s.logger.Info("error channel closed", "partition", partition)
						return
					}
					s.logger.Error("partition consumer error", "error", err.Err)
					mu.Lock()
					allErrors = append(allErrors, err.Err)
					mu.Unlock()
					select {
					case s.errChan <- fmt.Errorf("partition consumer error: %w", err.Err):
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					s.logger.Info("context canceled, shutting down partition consumer", "partition", partition)
					return
				}
			}
		}(pc, partition)
	}

	s.wg.Wait()
	close(s.errChan)

	var firstErr error
	select {
	case err := <-s.errChan:
		firstErr = err
	default:
		firstErr = nil
	}

	if len(allErrors) > 0 {
		aggErr := errors.Join(allErrors...)
		if firstErr != nil {
			return errors.Join(firstErr, aggErr)
		}
		return aggErr
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		s.logger.Info("consumer context canceled, all goroutines finished")
		return ctx.Err()
	}

	return firstErr
}

func (s *SettlementConsumer) processEvent(ctx context.Context, event domain.SettlementEvent) error {
	if err := s.wallet.RecordSettlement(ctx, event); err != nil {
		s.logger.Error("failed to record settlement", "error", err, "referenceID", event.ReferenceID)
		return fmt.Errorf("failed to record settlement: %w", err)
	}
	return nil
}

func (s *SettlementConsumer) Close() error {
	if err := s.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	return nil
}

func (s *SettlementConsumer) GetError() error {
	select {
	case err := <-s.errChan:
		return err
	default:
		return nil
	}
}

func (s *SettlementConsumer) validateEvent(event domain.SettlementEvent) error {
	err := s.validator.Struct(event)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			s.logger.Error("validation error",
				"field", err.Field(),
				"tag", err.Tag(),
				"value", err.Value(),
			)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
