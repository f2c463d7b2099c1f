package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/diem/reference-wallet-sub000/internal/config"
	"github.com/diem/reference-wallet-sub000/internal/domain"
	mock_kafka "github.com/diem/reference-wallet-sub000/internal/kafka/mocks"
	"github.com/diem/reference-wallet-sub000/tests"
)

func SetupTest(t *testing.T) (*SettlementConsumer, *mock_kafka.MockWallet, *mock_kafka.MockConsumer, *mock_kafka.MockPartitionConsumer, *gomock.Controller) {
	ctrl := gomock.NewController(t)

	mockWallet := mock_kafka.NewMockWallet(ctrl)
	mockConsumer := mock_kafka.NewMockConsumer(ctrl)
	mockPartitionConsumer := mock_kafka.NewMockPartitionConsumer(ctrl)

	cfg := config.Config{
		Kafka: config.KafkaConfig{
			Topic:          "settlement-events",
			MaxRetries:     3,
			InitialBackoff: 10 * time.Millisecond,
		},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	settlementConsumer, err := NewSettlementConsumer(context.Background(), cfg, logger, &sarama.Config{}, mockConsumer, mockWallet)
	assert.NoError(t, err)

	return settlementConsumer, mockWallet, mockConsumer, mockPartitionConsumer, ctrl
}

func TestSettlementConsumer_Consume_Success(t *testing.T) {
	settlementConsumer, mockWallet, mockConsumer, mockPartitionConsumer, ctrl := SetupTest(t)
	defer ctrl.Finish()

	partitions := []int32{0}
	mockConsumer.EXPECT().Partitions(settlementConsumer.topic).Return(partitions, nil)
	mockConsumer.EXPECT().ConsumePartition(settlementConsumer.topic, int32(0), sarama.OffsetNewest).Return(mockPartitionConsumer, nil)

	messages := make(chan *sarama.ConsumerMessage, 1)

	mockPartitionConsumer.EXPECT().Messages().Return((<-chan *sarama.ConsumerMessage)(messages)).AnyTimes()
	mockPartitionConsumer.EXPECT().Errors().Return(nil).AnyTimes()
	mockPartitionConsumer.EXPECT().Close().Return(nil)

	testEvent := tests.InstanceSettlement
	eventBytes, _ := json.Marshal(testEvent)

	messages <- &sarama.ConsumerMessage{Value: eventBytes}
	close(messages)

	mockWallet.EXPECT().RecordSettlement(gomock.Any(), testEvent).Return(nil)

	err := settlementConsumer.Consume(context.Background())

	assert.NoError(t, err)
}

func TestSettlementConsumer_Consume_PartitionError(t *testing.T) {
	settlementConsumer, _, mockConsumer, _, ctrl := SetupTest(t)
	defer ctrl.Finish()

	partitions := []int32{0}
	mockConsumer.EXPECT().Partitions(settlementConsumer.topic).Return(partitions, nil)
	expectedErr := errors.New("test-partition-error")
	mockConsumer.EXPECT().ConsumePartition(settlementConsumer.topic, int32(0), sarama.OffsetNewest).Return(nil, expectedErr)

	err := settlementConsumer.Consume(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), expectedErr.Error())
}

func TestSettlementConsumer_Consume_ProcessingError(t *testing.T) {
	settlementConsumer, mockWallet, mockConsumer, mockPartitionConsumer, ctrl := SetupTest(t)
	defer ctrl.Finish()

	partitions := []int32{0}
	mockConsumer.EXPECT().Partitions(settlementConsumer.topic).Return(partitions, nil)
	mockConsumer.EXPECT().ConsumePartition(settlementConsumer.topic, int32(0), sarama.OffsetNewest).Return(mockPartitionConsumer, nil)

	messages := make(chan *sarama.ConsumerMessage, 1)
	mockPartitionConsumer.EXPECT().Messages().Return((<-chan *sarama.ConsumerMessage)(messages)).AnyTimes()
	mockPartitionConsumer.EXPECT().Errors().Return(nil).AnyTimes()
	mockPartitionConsumer.EXPECT().Close().Return(nil)

	testEvent := tests.InstanceSettlement
	eventBytes, _ := json.Marshal(testEvent)
	messages <- &sarama.ConsumerMessage{Value: eventBytes}
	close(messages)

	expectedErr := errors.New("test-db-error")

	mockWallet.EXPECT().RecordSettlement(gomock.Any(), testEvent).Return(expectedErr).Times(settlementConsumer.cfg.Kafka.MaxRetries + 1)

	err := settlementConsumer.Consume(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), expectedErr.Error())
}

func TestSettlementConsumer_Consume_InvalidEventSkipped(t *testing.T) {
	settlementConsumer, mockWallet, mockConsumer, mockPartitionConsumer, ctrl := SetupTest(t)
	defer ctrl.Finish()

	partitions := []int32{0}
	mockConsumer.EXPECT().Partitions(settlementConsumer.topic).Return(partitions, nil)
	mockConsumer.EXPECT().ConsumePartition(settlementConsumer.topic, int32(0), sarama.OffsetNewest).Return(mockPartitionConsumer, nil)

	messages := make(chan *sarama.ConsumerMessage, 1)
	mockPartitionConsumer.EXPECT().Messages().Return((<-chan *sarama.ConsumerMessage)(messages)).AnyTimes()
	mockPartitionConsumer.EXPECT().Errors().Return(nil).AnyTimes()
	mockPartitionConsumer.EXPECT().Close().Return(nil)

	// Negative amount fails validation; the wallet must never see the event.
	invalidEvent := tests.InstanceSettlement
	invalidEvent.Amount = -1
	eventBytes, _ := json.Marshal(invalidEvent)
	messages <- &sarama.ConsumerMessage{Value: eventBytes}
	close(messages)

	mockWallet.EXPECT().RecordSettlement(gomock.Any(), gomock.Any()).Times(0)

	err := settlementConsumer.Consume(context.Background())
	assert.NoError(t, err)
}

func TestSettlementConsumer_Close_Success(t *testing.T) {
	settlementConsumer, _, mockConsumer, _, ctrl := SetupTest(t)
	defer ctrl.Finish()

	mockConsumer.EXPECT().Close().Return(nil)

	err := settlementConsumer.Close()
	assert.NoError(t, err)
}

func TestSettlementConsumer_ValidateEvent(t *testing.T) {
	settlementConsumer, _, _, _, ctrl := SetupTest(t)
	defer ctrl.Finish()

	assert.NoError(t, settlementConsumer.validateEvent(tests.InstanceSettlement))

	invalid := tests.InstanceSettlement
	invalid.ReferenceID = "not-a-uuid"
	assert.Error(t, settlementConsumer.validateEvent(invalid))

	var zero domain.SettlementEvent
	assert.Error(t, settlementConsumer.validateEvent(zero))
}
