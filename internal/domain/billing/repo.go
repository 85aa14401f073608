package billing

import "context"

type BillRepository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id int64) (*Bill, error)
	Update(ctx context.Context, b *Bill) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*Bill, int, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Bill, int, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Bill, int, error)
}
