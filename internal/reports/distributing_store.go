package reports

import (
	"context"

	"github.com/wolfman30/mindscreen/pkg/logging"
)

// EventPublisher announces stored reports. *Publisher satisfies it.
type EventPublisher interface {
	PublishStored(ctx context.Context, report *Report) error
}

// DistributingStore wraps a Store and, after each successful write, archives the report and
// publishes a notification. Archive and publish failures are logged and never fail the write;
// the primary store remains the system of record.
type DistributingStore struct {
	Store
	archive   *Archive
	publisher EventPublisher
	logger    *logging.Logger
}

func NewDistributingStore(inner Store, archive *Archive, publisher EventPublisher, logger *logging.Logger) *DistributingStore {
	if inner == nil {
		panic("reports: inner store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DistributingStore{Store: inner, archive: archive, publisher: publisher, logger: logger}
}

func (s *DistributingStore) StoreReport(ctx context.Context, patientID string, report *Report) (string, error) {
	id, err := s.Store.StoreReport(ctx, patientID, report)
	if err != nil {
		return "", err
	}
	stored := report.Clone()
	stored.ID = id
	stored.PatientID = patientID

	if s.archive.Enabled() {
		if err := s.archive.Put(ctx, stored); err != nil {
			s.logger.Warn("report archive failed", "report_id", id, "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishStored(ctx, stored); err != nil {
			s.logger.Warn("report event publish failed", "report_id", id, "error", err)
		}
	}
	return id, nil
}
