package history

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sourabhsahu334/newsUserBackend/internal/folders"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/util"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// FolderLookup resolves an account's folder; used to validate targets and export layouts.
type FolderLookup interface {
	Get(ctx context.Context, accountID, name string) (folders.Folder, error)
}

type Service struct {
	Repo    Repo
	Folders FolderLookup
	Now     func() time.Time
}

func NewService(repo Repo, lookup FolderLookup) *Service {
	return &Service{Repo: repo, Folders: lookup, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Record persists one record per entry, tagged with folderNames.
func (s *Service) Record(ctx context.Context, accountID string, folderNames []string, entries []Entry) ([]Record, error) {
	if len(entries) == 0 {
		return []Record{}, nil
	}
	names := folderSet(folderNames)
	now := s.now()
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		rec := Record{
			ID:             uuid.NewString(),
			AccountID:      accountID,
			Filename:       e.Filename,
			Candidate:      e.Candidate,
			Status:         StatusSuccess,
			FolderNames:    append([]string(nil), names...),
			CreditsCharged: e.CreditsCharged,
			Source:         e.Source,
			EmailID:        e.EmailID,
			EmailSubject:   e.EmailSubject,
			CreatedAt:      now,
		}
		if rec.Source == "" {
			rec.Source = SourceUpload
		}
		if e.Candidate == nil {
			rec.Status = StatusFailed
			rec.Error = util.SanitizeError(e.Error)
		}
		records = append(records, rec)
	}
	if err := s.Repo.Insert(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) List(ctx context.Context, accountID string, filter Filter, page, pageSize int) (Page, error) {
	return s.list(ctx, accountID, "", filter, page, pageSize)
}

// Search matches query case-insensitively against candidate details; failed records never match.
func (s *Service) Search(ctx context.Context, accountID, query string, filter Filter, page, pageSize int) (Page, error) {
	if strings.TrimSpace(query) == "" {
		return Page{}, ErrEmptyQuery
	}
	filter.Status = StatusSuccess
	return s.list(ctx, accountID, query, filter, page, pageSize)
}

func (s *Service) list(ctx context.Context, accountID, text string, filter Filter, page, pageSize int) (Page, error) {
	filter.Folder = strings.TrimSpace(filter.Folder)
	switch filter.Status {
	case "", StatusSuccess, StatusFailed:
	default:
		return Page{}, ErrInvalidStatus
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	items, total, err := s.Repo.List(ctx, accountID, Query{
		Filter: filter,
		Text:   text,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *Service) Get(ctx context.Context, accountID, id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, ErrNotFound
	}
	return s.Repo.Get(ctx, accountID, id)
}

// Move retags records from source to target.
func (s *Service) Move(ctx context.Context, accountID string, ids []string, source, target string) (int, error) {
	source, target = strings.TrimSpace(source), strings.TrimSpace(target)
	if source == "" || target == "" {
		return 0, ErrInvalidFolder
	}
	if source == target {
		return 0, ErrSameFolder
	}
	valid, err := s.prepare(ctx, accountID, ids, target)
	if err != nil {
		return 0, err
	}
	return requireAffected(s.Repo.Move(ctx, accountID, valid, source, target))
}

// Copy adds target to each record's folder set.
func (s *Service) Copy(ctx context.Context, accountID string, ids []string, target string) (int, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return 0, ErrInvalidFolder
	}
	valid, err := s.prepare(ctx, accountID, ids, target)
	if err != nil {
		return 0, err
	}
	return requireAffected(s.Repo.Copy(ctx, accountID, valid, target))
}

func (s *Service) Delete(ctx context.Context, accountID string, ids []string) (int, error) {
	valid, err := s.prepare(ctx, accountID, ids, "")
	if err != nil {
		return 0, err
	}
	return requireAffected(s.Repo.Delete(ctx, accountID, valid))
}

// RemoveFromFolder drops the folder tag and deletes records left without any folder.
func (s *Service) RemoveFromFolder(ctx context.Context, accountID string, ids []string, folder string) (int, error) {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return 0, ErrInvalidFolder
	}
	valid, err := s.prepare(ctx, accountID, ids, "")
	if err != nil {
		return 0, err
	}
	return requireAffected(s.Repo.RemoveFromFolder(ctx, accountID, valid, folder))
}

// prepare dedupes ids, drops malformed ones and checks the target folder exists.
func (s *Service) prepare(ctx context.Context, accountID string, ids []string, target string) ([]string, error) {
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}
	seen := make(map[string]struct{}, len(ids))
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(strings.TrimSpace(id))
		if err != nil {
			continue
		}
		key := parsed.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		valid = append(valid, key)
	}
	if len(valid) == 0 {
		return nil, ErrNotFound
	}
	if target != "" && s.Folders != nil {
		if _, err := s.Folders.Get(ctx, accountID, target); err != nil {
			return nil, err
		}
	}
	return valid, nil
}

func requireAffected(n int, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return n, nil
}
