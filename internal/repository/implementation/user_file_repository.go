package implementation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ai-studypal-be/internal/entity"
	"ai-studypal-be/internal/repository/contract"
)

// userFileRepository keeps user records in a single JSON file with
// load-all/modify/save-all semantics. Every operation reads the file fresh,
// so edits made by hand show up on the next call. The mutex serializes
// writers within this process only; concurrent processes can still lose a
// registration (last writer wins).
type userFileRepository struct {
	path string
	mu   sync.Mutex
}

func NewUserFileRepository(path string) contract.IUserRepository {
	return &userFileRepository{path: path}
}

func (r *userFileRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, u := range file.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *userFileRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return err
	}
	file.Users = append(file.Users, user)
	return r.save(file)
}

func (r *userFileRepository) All(ctx context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return nil, err
	}
	return file.Users, nil
}

func (r *userFileRepository) load() (*entity.UserFile, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &entity.UserFile{}, nil
		}
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	var file entity.UserFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse credential file: %w", err)
	}
	return &file, nil
}

func (r *userFileRepository) save(file *entity.UserFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential file: %w", err)
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create credential dir: %w", err)
		}
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}
