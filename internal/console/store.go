package console

import (
	"context"
	"io"

	"github.com/noah-isme/campus-admin-console/internal/models"
)

// Record is a persisted row with a store-assigned identity.
type Record interface {
	RecordID() string
}

// Store is the row data store of one table. Insert and Update return the row as
// persisted. Get reports a missing row with sql.ErrNoRows.
type Store[T Record, D any] interface {
	List(ctx context.Context, order models.Order) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, draft D) (T, error)
	Update(ctx context.Context, id string, draft D) (T, error)
	Delete(ctx context.Context, id string) error
}

// BatchInserter inserts several drafts in one statement.
type BatchInserter[T Record, D any] interface {
	InsertMany(ctx context.Context, drafts []D) ([]T, error)
}

// ForeignKeyDeleter removes every row whose column equals value.
type ForeignKeyDeleter interface {
	DeleteWhere(ctx context.Context, column, value string) error
}

// Upload is a file selected in the browser, streamed with the form submission.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
