package folders

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	folders map[string]map[string]Folder
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{folders: make(map[string]map[string]Folder)}
}

func (r *MemoryRepo) Create(ctx context.Context, folder Folder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byName, ok := r.folders[folder.AccountID]
	if !ok {
		byName = make(map[string]Folder)
		r.folders[folder.AccountID] = byName
	}
	if _, exists := byName[folder.Name]; exists {
		return ErrAlreadyExists
	}
	folder.VisibleColumns = append([]string(nil), folder.VisibleColumns...)
	byName[folder.Name] = folder
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, accountID, name string) (Folder, error) {
	if err := ctx.Err(); err != nil {
		return Folder{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	folder, ok := r.folders[accountID][name]
	if !ok {
		return Folder{}, ErrNotFound
	}
	folder.VisibleColumns = append([]string(nil), folder.VisibleColumns...)
	return folder, nil
}

func (r *MemoryRepo) List(ctx context.Context, accountID string) ([]Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Folder, 0, len(r.folders[accountID]))
	for _, folder := range r.folders[accountID] {
		folder.VisibleColumns = append([]string(nil), folder.VisibleColumns...)
		out = append(out, folder)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, accountID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[accountID][name]; !ok {
		return ErrNotFound
	}
	delete(r.folders[accountID], name)
	return nil
}

func (r *MemoryRepo) UpdateColumns(ctx context.Context, accountID, name string, columns []string) error {
	return r.update(ctx, accountID, name, func(f *Folder) {
		f.VisibleColumns = append([]string(nil), columns...)
	})
}

func (r *MemoryRepo) UpdateJobDescription(ctx context.Context, accountID, name, jobDescription string) error {
	return r.update(ctx, accountID, name, func(f *Folder) {
		f.JobDescription = jobDescription
	})
}

func (r *MemoryRepo) update(ctx context.Context, accountID, name string, apply func(*Folder)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	folder, ok := r.folders[accountID][name]
	if !ok {
		return ErrNotFound
	}
	apply(&folder)
	r.folders[accountID][name] = folder
	return nil
}
