package clinical

import "context"

type MedicalRecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id int64) (*MedicalRecord, error)
	Update(ctx context.Context, r *MedicalRecord) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error)
	// ListByPatient orders by record date, newest first.
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*MedicalRecord, int, error)
	ListByDoctor(ctx context.Context, doctorID int64, limit, offset int) ([]*MedicalRecord, int, error)
}
