package folders

import "context"

type Repo interface {
	Create(ctx context.Context, folder Folder) error
	Get(ctx context.Context, accountID, name string) (Folder, error)
	List(ctx context.Context, accountID string) ([]Folder, error)
	Delete(ctx context.Context, accountID, name string) error
	UpdateColumns(ctx context.Context, accountID, name string, columns []string) error
	UpdateJobDescription(ctx context.Context, accountID, name, jobDescription string) error
}
