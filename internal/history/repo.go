package history

import "context"

// Repo stores history records. Mutations return the number of the account's
// records they touched; ids owned by other accounts are never touched.
type Repo interface {
	Insert(ctx context.Context, records []Record) error
	List(ctx context.Context, accountID string, q Query) ([]Record, int, error)
	Get(ctx context.Context, accountID, id string) (Record, error)
	Move(ctx context.Context, accountID string, ids []string, source, target string) (int, error)
	Copy(ctx context.Context, accountID string, ids []string, target string) (int, error)
	Delete(ctx context.Context, accountID string, ids []string) (int, error)
	RemoveFromFolder(ctx context.Context, accountID string, ids []string, folder string) (int, error)
}
