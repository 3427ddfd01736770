package folders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const maxNameLength = 100

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// NormalizeName trims a folder name and enforces length limits.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

func (s *Service) Create(ctx context.Context, accountID, name, jobDescription string) (Folder, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return Folder{}, err
	}
	folder := Folder{
		AccountID:      accountID,
		Name:           name,
		JobDescription: strings.TrimSpace(jobDescription),
		VisibleColumns: defaultColumns(),
		CreatedAt:      s.now(),
	}
	if err := s.Repo.Create(ctx, folder); err != nil {
		return Folder{}, err
	}
	return folder, nil
}

// EnsureDefault creates the default folder if the account lacks one.
func (s *Service) EnsureDefault(ctx context.Context, accountID string) error {
	_, err := s.Create(ctx, accountID, DefaultName, "")
	if errors.Is(err, ErrAlreadyExists) {
		return nil
	}
	return err
}

func (s *Service) Delete(ctx context.Context, accountID, name string) error {
	name, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if name == DefaultName {
		return ErrDefaultFolder
	}
	return s.Repo.Delete(ctx, accountID, name)
}

func (s *Service) Get(ctx context.Context, accountID, name string) (Folder, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return Folder{}, ErrNotFound
	}
	return s.Repo.Get(ctx, accountID, name)
}

func (s *Service) List(ctx context.Context, accountID string) ([]Folder, error) {
	return s.Repo.List(ctx, accountID)
}

// SetVisibleColumns replaces the column layout. Duplicates are dropped, order kept.
func (s *Service) SetVisibleColumns(ctx context.Context, accountID, name string, columns []string) ([]string, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, ErrNotFound
	}
	cleaned := dedupe(columns)
	for _, key := range cleaned {
		if !KnownColumn(key) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidColumn, key)
		}
	}
	if err := s.Repo.UpdateColumns(ctx, accountID, name, cleaned); err != nil {
		return nil, err
	}
	return cleaned, nil
}

func (s *Service) SetJobDescription(ctx context.Context, accountID, name, jobDescription string) error {
	name, err := NormalizeName(name)
	if err != nil {
		return ErrNotFound
	}
	return s.Repo.UpdateJobDescription(ctx, accountID, name, strings.TrimSpace(jobDescription))
}

// ResolveJobDescription returns the folder's stored job description, "" when none is set.
func (s *Service) ResolveJobDescription(ctx context.Context, accountID, name string) (string, error) {
	folder, err := s.Get(ctx, accountID, name)
	if err != nil {
		return "", err
	}
	return folder.JobDescription, nil
}
