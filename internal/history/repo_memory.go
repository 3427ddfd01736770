package history

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string]Record)}
}

func (r *MemoryRepo) Insert(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		rec.FolderNames = append([]string(nil), rec.FolderNames...)
		r.records[rec.ID] = rec
	}
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, accountID string, q Query) ([]Record, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	text := normalizeQuery(q.Text)
	r.mu.RLock()
	matched := make([]Record, 0)
	for _, rec := range r.records {
		if rec.AccountID != accountID {
			continue
		}
		if q.Folder != "" && !hasFolder(rec.FolderNames, q.Folder) {
			continue
		}
		if q.Status != "" && rec.Status != q.Status {
			continue
		}
		if text != "" && !strings.Contains(searchText(rec.Candidate), text) {
			continue
		}
		rec.FolderNames = append([]string(nil), rec.FolderNames...)
		matched = append(matched, rec)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	if q.Offset >= total {
		return []Record{}, total, nil
	}
	end := total
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], total, nil
}

func (r *MemoryRepo) Get(ctx context.Context, accountID, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok || rec.AccountID != accountID {
		return Record{}, ErrNotFound
	}
	rec.FolderNames = append([]string(nil), rec.FolderNames...)
	return rec, nil
}

func (r *MemoryRepo) Move(ctx context.Context, accountID string, ids []string, source, target string) (int, error) {
	return r.mutate(ctx, accountID, ids, func(rec *Record) (bool, bool) {
		if !hasFolder(rec.FolderNames, source) {
			return false, false
		}
		names := withoutFolder(rec.FolderNames, source)
		if !hasFolder(names, target) {
			names = append(names, target)
		}
		rec.FolderNames = names
		return true, false
	})
}

func (r *MemoryRepo) Copy(ctx context.Context, accountID string, ids []string, target string) (int, error) {
	return r.mutate(ctx, accountID, ids, func(rec *Record) (bool, bool) {
		if !hasFolder(rec.FolderNames, target) {
			rec.FolderNames = append(rec.FolderNames, target)
		}
		return true, false
	})
}

func (r *MemoryRepo) Delete(ctx context.Context, accountID string, ids []string) (int, error) {
	return r.mutate(ctx, accountID, ids, func(rec *Record) (bool, bool) {
		return true, true
	})
}

func (r *MemoryRepo) RemoveFromFolder(ctx context.Context, accountID string, ids []string, folder string) (int, error) {
	return r.mutate(ctx, accountID, ids, func(rec *Record) (bool, bool) {
		if !hasFolder(rec.FolderNames, folder) {
			return false, false
		}
		rec.FolderNames = withoutFolder(rec.FolderNames, folder)
		return true, len(rec.FolderNames) == 0
	})
}

// mutate applies fn to each of the account's records; fn reports (touched, delete).
func (r *MemoryRepo) mutate(ctx context.Context, accountID string, ids []string, fn func(*Record) (bool, bool)) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	affected := 0
	for _, id := range ids {
		rec, ok := r.records[id]
		if !ok || rec.AccountID != accountID {
			continue
		}
		rec.FolderNames = append([]string(nil), rec.FolderNames...)
		touched, remove := fn(&rec)
		if !touched {
			continue
		}
		affected++
		if remove {
			delete(r.records, id)
			continue
		}
		r.records[id] = rec
	}
	return affected, nil
}
