package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Catmanpooh/oort-hackathon/internal/events"
	"github.com/Catmanpooh/oort-hackathon/internal/metrics"
	"github.com/Catmanpooh/oort-hackathon/internal/models"
	"github.com/Catmanpooh/oort-hackathon/internal/supabase"
)

var (
	// ErrObjectNotSigned means no signed URL could be produced for the key.
	ErrObjectNotSigned = errors.New("object could not be signed")
	ErrItemNotStored   = errors.New("market item could not be stored")
	ErrNoObjects       = errors.New("no objects found")
)

type ObjectStore interface {
	UploadObject(projectName, fileName string, data []byte, contentType string) (string, error)
	SignedURL(key string, ttl time.Duration) (string, error)
	ListObjects(prefix string) ([]string, error)
	DeleteObject(projectName, fileName string) error
}

type ItemWriter interface {
	CreateItem(item *models.MarketItem) error
}

type ItemReader interface {
	ListItemsByAddress(address string) ([]models.MarketItem, error)
}

// Asset is one file received by /create.
type Asset struct {
	FileName    string
	ContentType string
	Data        []byte
}

type StoreResult struct {
	ProjectName string
	Messages    []string
	Failed      int
}

type RegistryService struct {
	store     ObjectStore
	writer    ItemWriter
	reader    ItemReader
	publisher events.Publisher
	urlTTL    time.Duration
	logger    *logrus.Logger
	now       func() time.Time
}

func NewRegistryService(
	store ObjectStore,
	writer ItemWriter,
	reader ItemReader,
	publisher events.Publisher,
	urlTTL time.Duration,
	logger *logrus.Logger,
) *RegistryService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RegistryService{
		store:     store,
		writer:    writer,
		reader:    reader,
		publisher: publisher,
		urlTTL:    urlTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock replaces the time source used for blocktime stamps.
func (s *RegistryService) SetClock(now func() time.Time) {
	s.now = now
}

// StoreAssets writes every asset under <projectName>/<file name>. Failures
// are reported per file; earlier successes are not rolled back.
func (s *RegistryService) StoreAssets(projectName string, assets []Asset) StoreResult {
	result := StoreResult{ProjectName: projectName, Messages: make([]string, 0, len(assets))}

	for _, asset := range assets {
		log := s.logger.WithFields(logrus.Fields{"project_name": projectName, "file": asset.FileName})

		if _, err := s.store.UploadObject(projectName, asset.FileName, asset.Data, asset.ContentType); err != nil {
			result.Failed++
			result.Messages = append(result.Messages, fmt.Sprintf("%s error uploading file | Error: %v", asset.FileName, err))
			metrics.AssetUploadsTotal.WithLabelValues("failure").Inc()
			log.WithError(err).Error("asset upload failed")
			continue
		}

		result.Messages = append(result.Messages, fmt.Sprintf("%s file was successfully uploaded!", asset.FileName))
		metrics.AssetUploadsTotal.WithLabelValues("success").Inc()
		log.WithField("bytes", len(asset.Data)).Info("asset stored")
	}

	return result
}

// RegisterObject presigns the object, records a market item pointing at the
// signed URL and announces it. The signed URL is returned.
func (s *RegistryService) RegisterObject(ctx context.Context, req models.ObjectURIRequest) (string, error) {
	key := supabase.ObjectKey(req.ProjectName, req.ObjectName)
	log := s.logger.WithFields(logrus.Fields{"key": key, "address": req.Address})

	url, err := s.store.SignedURL(key, s.urlTTL)
	if err != nil {
		metrics.ObjectRegistrationsTotal.WithLabelValues("not_signed").Inc()
		log.WithError(err).Warn("object could not be signed")
		return "", fmt.Errorf("%w: %w", ErrObjectNotSigned, err)
	}

	item := models.MarketItem{
		Address:         req.Address,
		ContractAddress: req.ContractAddress,
		Metadata:        req.Metadata,
		Blocktime:       s.now().Unix(),
		File:            url,
	}
	if err := s.writer.CreateItem(&item); err != nil {
		metrics.ObjectRegistrationsTotal.WithLabelValues("not_stored").Inc()
		log.WithError(err).Error("market item could not be stored")
		return "", fmt.Errorf("%w: %w", ErrItemNotStored, err)
	}
	metrics.ObjectRegistrationsTotal.WithLabelValues("success").Inc()
	log.WithField("item_id", item.ID).Info("object registered")

	s.publish(ctx, events.TypeItemRegistered, events.ItemRegistered{
		ItemID:          item.ID.String(),
		Address:         item.Address,
		ContractAddress: item.ContractAddress,
		ProjectName:     req.ProjectName,
		ObjectName:      req.ObjectName,
		Metadata:        item.Metadata,
		Blocktime:       item.Blocktime,
		File:            item.File,
	})

	return url, nil
}

func (s *RegistryService) ListUserItems(address string) ([]models.MarketItem, error) {
	items, err := s.reader.ListItemsByAddress(address)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListObjects returns the keys stored under prefix, or ErrNoObjects.
func (s *RegistryService) ListObjects(prefix string) ([]string, error) {
	names, err := s.store.ListObjects(prefix)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrNoObjects
	}
	return names, nil
}

func (s *RegistryService) DeleteItem(ctx context.Context, projectName, itemName string) error {
	if err := s.store.DeleteObject(projectName, itemName); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"project_name": projectName, "item": itemName}).Info("object deleted")

	s.publish(ctx, events.TypeItemDeleted, events.ItemDeleted{ProjectName: projectName, ItemName: itemName})
	return nil
}

// publish never fails the caller; the item is already stored.
func (s *RegistryService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		metrics.EventsPublishFailed.WithLabelValues(eventType).Inc()
		s.logger.WithError(err).WithField("event_type", eventType).Warn("failed to publish event")
	}
}
