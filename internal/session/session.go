package session

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Mode — выбранный пользователем режим обработки голосовых сообщений.
type Mode string

const (
	ModeUnset   Mode = ""
	ModeTask    Mode = "task"
	ModeMeeting Mode = "meeting"
)

const dedupCacheSize = 100

// Store хранит режимы пользователей и отметки обработанных сообщений.
// Живет в памяти процесса; записи режимов не удаляются до перезапуска.
type Store struct {
	mu    sync.RWMutex
	modes map[int64]Mode
	seen  *lru.Cache[string, struct{}]
}

func NewStore() *Store {
	seen, err := lru.New[string, struct{}](dedupCacheSize)
	if err != nil {
		// lru.New возвращает ошибку только при неположительном размере
		panic(err)
	}

	return &Store{
		modes: make(map[int64]Mode),
		seen:  seen,
	}
}

func (s *Store) SetMode(userID int64, mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes[userID] = mode
}

func (s *Store) GetMode(userID int64) Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modes[userID]
}

func (s *Store) ClearMode(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.modes, userID)
}

// SeenAndMark возвращает true, если пара (пользователь, сообщение) уже
// обрабатывалась, иначе запоминает её и возвращает false. Окно памяти
// ограничено размером кэша — защита от повторных доставок, не точная.
func (s *Store) SeenAndMark(userID int64, messageID int) bool {
	key := fmt.Sprintf("%d:%d", userID, messageID)
	if s.seen.Contains(key) {
		return true
	}
	s.seen.Add(key, struct{}{})
	return false
}
