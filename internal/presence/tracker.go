package presence

import "sync"

// Tracker хранит множество пользователей с открытым realtime-соединением.
// Учет ведется по userID, а не по соединению: пользователь с двумя вкладками
// считается один раз, а закрыв одну из них, пропадает из счетчика, пока
// открыта вторая. Поведение исходной системы сохранено намеренно.
type Tracker struct {
	mu    sync.Mutex
	users map[uint]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{users: make(map[uint]struct{})}
}

// Connect добавляет пользователя и возвращает новый размер множества
func (t *Tracker) Connect(userID uint) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.users[userID] = struct{}{}
	return len(t.users)
}

// Disconnect удаляет пользователя и возвращает новый размер множества
func (t *Tracker) Disconnect(userID uint) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.users, userID)
	return len(t.users)
}

func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.users)
}
