package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/stockkeeper/internal/blob"
	"github.com/and161185/stockkeeper/internal/errs"
	"github.com/and161185/stockkeeper/internal/limiter"
	"github.com/and161185/stockkeeper/internal/model"
	"github.com/and161185/stockkeeper/internal/repository"
)

/************ users ************/

type fakeUsers struct {
	byEmail   map[string]*model.User
	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byEmail == nil {
		f.byEmail = map[string]*model.User{}
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return errs.ErrAlreadyExists
	}
	c := *u
	f.byEmail[u.Email] = &c
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

/************ limiter ************/

type fakeLimiter struct {
	allowOK     bool
	allowErr    error
	failBlocked bool

	failureCalls int
	successCalls int
	lastEmail    string
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(_ context.Context, email string, _ []byte) (bool, time.Duration, error) {
	l.lastEmail = email
	return l.allowOK, 0, l.allowErr
}

func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return nil
}

func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, nil
}

/************ items ************/

// fakeItems serializes every mutation under one mutex, the way a row lock does.
type fakeItems struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Item
	seq   int

	createCalls int
	createErr   error
	updateErr   error
	listErr     error
	lastPatch   model.ItemPatch
}

var _ repository.ItemRepository = (*fakeItems)(nil)

func newFakeItems() *fakeItems { return &fakeItems{items: map[uuid.UUID]*model.Item{}} }

func (f *fakeItems) put(it model.Item) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it.ID == uuid.Nil {
		it.ID = uuid.Must(uuid.NewV4())
	}
	f.seq++
	it.UpdatedAt = time.Unix(int64(f.seq), 0)
	f.items[it.ID] = &it
	return it.ID
}

func (f *fakeItems) Create(_ context.Context, in model.NewItem) (uuid.UUID, error) {
	f.mu.Lock()
	f.createCalls++
	err := f.createErr
	f.mu.Unlock()
	if err != nil {
		return uuid.Nil, err
	}
	in = in.Normalize()
	return f.put(model.Item{Name: in.Name, Quantity: in.Quantity, Category: in.Category}), nil
}

func (f *fakeItems) Update(_ context.Context, id uuid.UUID, p model.ItemPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPatch = p
	if f.updateErr != nil {
		return f.updateErr
	}
	it, ok := f.items[id]
	if !ok {
		return errs.ErrNotFound
	}
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Quantity != nil {
		it.Quantity = model.ClampQuantity(*p.Quantity)
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.ImageURL != nil {
		it.ImageURL = p.ImageURL
	}
	if p.StoragePath != nil {
		it.StoragePath = p.StoragePath
	}
	return nil
}

func (f *fakeItems) Delete(_ context.Context, id uuid.UUID) (*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	delete(f.items, id)
	return it.StoragePath, nil
}

func (f *fakeItems) AdjustQuantity(_ context.Context, id uuid.UUID, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return 0, errs.ErrNotFound
	}
	it.Quantity = model.NextQuantity(it.Quantity, delta)
	return it.Quantity, nil
}

func (f *fakeItems) Get(_ context.Context, id uuid.UUID) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *it
	return &c, nil
}

func (f *fakeItems) List(context.Context) ([]model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Item, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

/************ settings ************/

type fakeSettings struct {
	mu     sync.Mutex
	stored *model.Settings
	err    error
}

var _ repository.SettingsRepository = (*fakeSettings)(nil)

func (f *fakeSettings) EnsureDefaults(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.stored == nil {
		d := model.DefaultSettings()
		f.stored = &d
	}
	return nil
}

func (f *fakeSettings) Get(context.Context) (model.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Settings{}, f.err
	}
	if f.stored == nil {
		return model.DefaultSettings(), nil
	}
	return *f.stored, nil
}

func (f *fakeSettings) Update(_ context.Context, p model.SettingsPatch) (model.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Settings{}, f.err
	}
	if f.stored == nil {
		d := model.DefaultSettings()
		f.stored = &d
	}
	if p.DarkMode != nil {
		f.stored.DarkMode = *p.DarkMode
	}
	if p.LowStock != nil {
		f.stored.LowStock = *p.LowStock
	}
	return *f.stored, nil
}

func (f *fakeSettings) StepLowStock(_ context.Context, delta int64) (model.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored == nil {
		d := model.DefaultSettings()
		f.stored = &d
	}
	f.stored.LowStock = model.ClampLowStock(f.stored.LowStock + delta)
	return *f.stored, nil
}

/************ blobs ************/

type fakeBlobs struct {
	mu        sync.Mutex
	data      map[string][]byte
	types     map[string]string
	putErr    error
	deleteErr error
	deleted   []string
}

var _ blob.Store = (*fakeBlobs)(nil)

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{data: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeBlobs) Put(_ context.Context, p string, r io.Reader, ct string) error {
	if f.putErr != nil {
		return f.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[p] = b
	f.types[p] = ct
	return nil
}

func (f *fakeBlobs) Open(_ context.Context, p string) (io.ReadCloser, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.data[p]
	if !ok {
		return nil, "", errs.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), f.types[p], nil
}

func (f *fakeBlobs) Delete(_ context.Context, p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, p)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.data[p]; !ok {
		return errs.ErrNotFound
	}
	delete(f.data, p)
	return nil
}
