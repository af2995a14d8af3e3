package todos

import "context"

// MockStore is a function-field mock of Store for handler tests. Unset
// functions fall back to benign defaults.
type MockStore struct {
	CreateFn           func(ctx context.Context, userID, name, dueDate string) (*Item, error)
	ListFn             func(ctx context.Context, userID string, limit int32, cursor string) ([]Item, string, error)
	UpdateFn           func(ctx context.Context, userID, todoID string, patch Patch) (*Item, error)
	DeleteFn           func(ctx context.Context, userID, todoID string) error
	SetAttachmentURLFn func(ctx context.Context, userID, todoID, url string) error
}

func (m *MockStore) Create(ctx context.Context, userID, name, dueDate string) (*Item, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, userID, name, dueDate)
	}
	return nil, nil
}

func (m *MockStore) List(ctx context.Context, userID string, limit int32, cursor string) ([]Item, string, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, limit, cursor)
	}
	return nil, "", nil
}

func (m *MockStore) Update(ctx context.Context, userID, todoID string, patch Patch) (*Item, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, userID, todoID, patch)
	}
	return nil, ErrNotFound
}

func (m *MockStore) Delete(ctx context.Context, userID, todoID string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, todoID)
	}
	return nil
}

func (m *MockStore) SetAttachmentURL(ctx context.Context, userID, todoID, url string) error {
	if m.SetAttachmentURLFn != nil {
		return m.SetAttachmentURLFn(ctx, userID, todoID, url)
	}
	return nil
}
