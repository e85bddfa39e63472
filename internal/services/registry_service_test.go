package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Catmanpooh/oort-hackathon/internal/events"
	"github.com/Catmanpooh/oort-hackathon/internal/models"
	"github.com/Catmanpooh/oort-hackathon/internal/services"
)

type fakeStore struct {
	mu        sync.Mutex
	uploaded  []string
	failOn    map[string]error
	signErr   error
	signedKey string
	signedTTL time.Duration
	objects   []string
	listErr   error
	deleted   []string
	deleteErr error
}

func (f *fakeStore) UploadObject(projectName, fileName string, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[fileName]; err != nil {
		return "", err
	}
	key := projectName + "/" + fileName
	f.uploaded = append(f.uploaded, key)
	return key, nil
}

func (f *fakeStore) SignedURL(key string, ttl time.Duration) (string, error) {
	f.signedKey, f.signedTTL = key, ttl
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://storage.example/" + key + "?token=t", nil
}

func (f *fakeStore) ListObjects(string) ([]string, error) { return f.objects, f.listErr }

func (f *fakeStore) DeleteObject(projectName, fileName string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, projectName+"/"+fileName)
	return nil
}

type fakeItems struct {
	created []models.MarketItem
	err     error
	byAddr  map[string][]models.MarketItem
}

func (f *fakeItems) CreateItem(item *models.MarketItem) error {
	if f.err != nil {
		return f.err
	}
	item.ID = uuid.MustParse("6f1c1a52-9a0f-4f63-9a53-0b4bb1c3f4d1")
	f.created = append(f.created, *item)
	return nil
}

func (f *fakeItems) ListItemsByAddress(address string) ([]models.MarketItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byAddr[address], nil
}

type recordingPublisher struct {
	types []string
	data  []any
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, data any) error {
	p.types = append(p.types, eventType)
	p.data = append(p.data, data)
	return p.err
}

func (p *recordingPublisher) Close() {}

func newService(store *fakeStore, items *fakeItems, pub events.Publisher) *services.RegistryService {
	svc := services.NewRegistryService(store, items, items, pub, 10*time.Hour, nil)
	svc.SetClock(func() time.Time { return time.Unix(1700000000, 0) })
	return svc
}

func registration() models.ObjectURIRequest {
	return models.ObjectURIRequest{
		Address:         "0xabc",
		ContractAddress: "0x1d2569Bf9A36204b250D45Efb6ffd2f763C012FC",
		Metadata:        json.RawMessage(`{"trait_type":{"Strand":"Hats"},"value":{"Strand":"grin"}}`),
		ProjectName:     "foo-bar",
		ObjectName:      "art.png",
	}
}

func TestStoreAssets(t *testing.T) {
	store := &fakeStore{failOn: map[string]error{"meta.json": errors.New("bucket full")}}
	svc := newService(store, &fakeItems{}, nil)

	result := svc.StoreAssets("foo-bar", []services.Asset{
		{FileName: "art.png", Data: []byte("pixels")},
		{FileName: "meta.json", Data: []byte("{}")},
	})

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"foo-bar/art.png"}, store.uploaded)
	require.Len(t, result.Messages, 2)
	assert.Equal(t, "art.png file was successfully uploaded!", result.Messages[0])
	assert.Equal(t, "meta.json error uploading file | Error: bucket full", result.Messages[1])
}

func TestRegisterObject(t *testing.T) {
	store := &fakeStore{}
	items := &fakeItems{}
	pub := &recordingPublisher{}
	svc := newService(store, items, pub)

	url, err := svc.RegisterObject(context.Background(), registration())

	require.NoError(t, err)
	assert.Equal(t, "https://storage.example/foo-bar/art.png?token=t", url)
	assert.Equal(t, "foo-bar/art.png", store.signedKey)
	assert.Equal(t, 10*time.Hour, store.signedTTL)

	require.Len(t, items.created, 1)
	item := items.created[0]
	assert.Equal(t, "0xabc", item.Address)
	assert.Equal(t, int64(1700000000), item.Blocktime)
	assert.Equal(t, url, item.File)
	assert.JSONEq(t, `{"trait_type":{"Strand":"Hats"},"value":{"Strand":"grin"}}`, string(item.Metadata))

	require.Equal(t, []string{events.TypeItemRegistered}, pub.types)
	event := pub.data[0].(events.ItemRegistered)
	assert.Equal(t, "6f1c1a52-9a0f-4f63-9a53-0b4bb1c3f4d1", event.ItemID)
	assert.Equal(t, "art.png", event.ObjectName)
}

func TestRegisterObject_SignFailure(t *testing.T) {
	items := &fakeItems{}
	pub := &recordingPublisher{}
	svc := newService(&fakeStore{signErr: errors.New("NoSuchKey")}, items, pub)

	_, err := svc.RegisterObject(context.Background(), registration())

	assert.ErrorIs(t, err, services.ErrObjectNotSigned)
	assert.Contains(t, err.Error(), "NoSuchKey")
	assert.Empty(t, items.created)
	assert.Empty(t, pub.types)
}

func TestRegisterObject_StoreFailure(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(&fakeStore{}, &fakeItems{err: errors.New("db down")}, pub)

	_, err := svc.RegisterObject(context.Background(), registration())

	assert.ErrorIs(t, err, services.ErrItemNotStored)
	assert.Empty(t, pub.types)
}

func TestRegisterObject_PublishFailureIsNotFatal(t *testing.T) {
	items := &fakeItems{}
	svc := newService(&fakeStore{}, items, &recordingPublisher{err: errors.New("nats down")})

	url, err := svc.RegisterObject(context.Background(), registration())

	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Len(t, items.created, 1)
}

func TestListObjects(t *testing.T) {
	svc := newService(&fakeStore{objects: []string{"art.png"}}, &fakeItems{}, nil)
	names, err := svc.ListObjects("foo-bar")
	require.NoError(t, err)
	assert.Equal(t, []string{"art.png"}, names)

	svc = newService(&fakeStore{}, &fakeItems{}, nil)
	_, err = svc.ListObjects("empty")
	assert.ErrorIs(t, err, services.ErrNoObjects)
}

func TestListUserItems(t *testing.T) {
	items := &fakeItems{byAddr: map[string][]models.MarketItem{"0xabc": {{Address: "0xabc"}}}}
	svc := newService(&fakeStore{}, items, nil)

	got, err := svc.ListUserItems("0xabc")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDeleteItem(t *testing.T) {
	store := &fakeStore{}
	pub := &recordingPublisher{}
	svc := newService(store, &fakeItems{}, pub)

	require.NoError(t, svc.DeleteItem(context.Background(), "foo-bar", "art.png"))
	assert.Equal(t, []string{"foo-bar/art.png"}, store.deleted)
	assert.Equal(t, []string{events.TypeItemDeleted}, pub.types)

	store.deleteErr = errors.New("gone")
	assert.Error(t, svc.DeleteItem(context.Background(), "foo-bar", "art.png"))
	assert.Len(t, pub.types, 1)
}
