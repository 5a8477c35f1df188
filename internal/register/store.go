package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/tartampluch/go-register/internal/config"
	"go.uber.org/multierr"
)

// fileFormat is the on-disk layout of the member file.
// NextID is a high-water mark so ids are never reused after a removal.
type fileFormat struct {
	Members []Member `json:"members"`
	NextID  int      `json:"next_id,omitempty"`
}

// Store owns the canonical member list and mirrors it to a JSON file.
// Every completed mutation is on disk before the method returns; a failed
// mutation leaves both the file and the in-memory list untouched.
type Store struct {
	mu      sync.RWMutex
	path    string
	clock   Clock
	members []Member
	nextID  int
}

// Option customizes a Store.
type Option func(*Store)

// WithClock injects the clock used to stamp JoinedAt.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// NewStore returns an empty store bound to path. Nothing is read or written,
// so the first mutation replaces whatever the file held. Use Open for an
// existing register.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		clock:  RealClock{},
		nextID: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store and loads the existing file, if any.
func Open(path string, opts ...Option) (*Store, error) {
	s := NewStore(path, opts...)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory list with the file contents.
// A missing file yields an empty store; a malformed one returns *CorruptStoreError
// and leaves the current list as it was.
func (s *Store) Load() error {
	log := slog.With(config.LogKeyComponent, config.CompStore, config.LogKeyPath, s.path)

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		s.mu.Lock()
		s.members, s.nextID = nil, 1
		s.mu.Unlock()
		log.Info(config.MsgStoreMissing)
		return nil
	}

	lock := flock.New(s.path + config.LockFileSuffix)
	if err := lock.RLock(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreLock, err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := readFile(s.path)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreRead, err)
	}

	members, nextID, err := decode(data)
	if err != nil {
		return &CorruptStoreError{Path: s.path, Err: err}
	}

	s.mu.Lock()
	s.members, s.nextID = members, nextID
	s.mu.Unlock()

	log.Info(config.MsgStoreLoaded, config.LogKeyCount, len(members))
	return nil
}

// readFile reads the whole file, closing it on every path.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// decode parses and checks the member file. Records must have a name and a unique positive id.
func decode(data []byte) ([]Member, int, error) {
	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrStoreDecode, err)
	}

	seen := make(map[int]struct{}, len(ff.Members))
	nextID := max(ff.NextID, 1)
	for _, m := range ff.Members {
		if strings.TrimSpace(m.Name) == "" {
			return nil, 0, fmt.Errorf("%s: member %d: %s", config.ErrStoreDecode, m.ID, config.ErrNameRequired)
		}
		if m.ID <= 0 {
			return nil, 0, fmt.Errorf("%s: %s %d", config.ErrStoreDecode, config.ErrInvalidID, m.ID)
		}
		if _, dup := seen[m.ID]; dup {
			return nil, 0, fmt.Errorf("%s: %s %d", config.ErrStoreDecode, config.ErrDuplicateID, m.ID)
		}
		seen[m.ID] = struct{}{}
		nextID = max(nextID, m.ID+1)
	}
	return ff.Members, nextID, nil
}

// Persist writes the current list to disk.
func (s *Store) Persist() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.write(s.members, s.nextID)
}

// write serializes members to a temp file next to the target, then renames it
// over the target under an exclusive advisory lock.
func (s *Store) write(members []Member, nextID int) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}

	lock := flock.New(s.path + config.LockFileSuffix)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreLock, err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, config.TempFilePattern)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if members == nil {
		members = []Member{}
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", config.JSONIndent)
	if err = enc.Encode(fileFormat{Members: members, NextID: nextID}); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreWrite, err)
	}

	slog.Debug(config.MsgStorePersisted,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyPath, s.path,
		config.LogKeyCount, len(members))
	return nil
}

// Add validates the candidate, assigns the next id, stamps JoinedAt and persists.
func (s *Store) Add(c Candidate) (Member, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return Member{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	m := c.member(id, s.clock.Now().Round(0).UTC())

	// Clip forces append to copy, so a failed write cannot leak into s.members.
	next := append(slices.Clip(s.members), m)
	if err := s.write(next, id+1); err != nil {
		return Member{}, err
	}
	s.members, s.nextID = next, id+1

	slog.Info(config.MsgMemberAdded,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyID, id)
	return m, nil
}

// AddAll adds every candidate in one write. Either all are added or none:
// any invalid candidate fails the whole batch, with errors combined.
func (s *Store) AddAll(cs []Candidate) ([]Member, error) {
	normalized := make([]Candidate, len(cs))
	var errs error
	for i, c := range cs {
		normalized[i] = c.Normalize()
		errs = multierr.Append(errs, normalized[i].Validate())
	}
	if errs != nil {
		return nil, errs
	}
	if len(cs) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	joined := s.clock.Now().Round(0).UTC()
	added := make([]Member, len(normalized))
	for i, c := range normalized {
		added[i] = c.member(s.nextID+i, joined)
	}

	next := slices.Concat(s.members, added)
	nextID := s.nextID + len(added)
	if err := s.write(next, nextID); err != nil {
		return nil, err
	}
	s.members, s.nextID = next, nextID

	slog.Info(config.MsgMemberAdded,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyCount, len(added))
	return added, nil
}

// Remove deletes the member with the given id. It returns false, and writes
// nothing, when no such member exists.
func (s *Store) Remove(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.members, func(m Member) bool { return m.ID == id })
	if idx < 0 {
		return false, nil
	}

	next := slices.Concat(s.members[:idx], s.members[idx+1:])
	if err := s.write(next, s.nextID); err != nil {
		return false, err
	}
	s.members = next

	slog.Info(config.MsgMemberRemoved,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyID, id)
	return true, nil
}

// FindByID returns the first member with the given id.
func (s *Store) FindByID(id int) (Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// Get is FindByID surfaced as an error.
func (s *Store) Get(id int) (Member, error) {
	m, ok := s.FindByID(id)
	if !ok {
		return Member{}, &NotFoundError{ID: id}
	}
	return m, nil
}

// Search yields, in store order, members whose name or phone contains query,
// ignoring case. Only the empty query matches everyone; spaces are significant. The sequence walks the list
// as it was when Search was called.
func (s *Store) Search(query string) iter.Seq[Member] {
	s.mu.RLock()
	snapshot := s.members
	s.mu.RUnlock()

	q := strings.ToLower(query)
	return func(yield func(Member) bool) {
		for _, m := range snapshot {
			if q != "" &&
				!strings.Contains(strings.ToLower(m.Name), q) &&
				!strings.Contains(strings.ToLower(m.Phone), q) {
				continue
			}
			if !yield(m) {
				return
			}
		}
	}
}

// FindByName returns members whose trimmed name equals name, ignoring case.
// It backs the "pick an id, then remove" flow.
func (s *Store) FindByName(name string) []Member {
	name = strings.TrimSpace(name)
	var out []Member
	for m := range s.Search(name) {
		if strings.EqualFold(strings.TrimSpace(m.Name), name) {
			out = append(out, m)
		}
	}
	return out
}

// List returns a copy of all members in insertion order.
func (s *Store) List() []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.members)
}

// Len returns the number of members.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}
