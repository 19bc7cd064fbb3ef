package recording

import "sync"

// DeletionMask es el conjunto de ids con lápida de la sesión: vacío al
// arrancar, crece de forma monótona y se descarta al terminar el proceso.
// Un id se añade en el momento en que se pide el borrado, antes de que el
// almacén lo confirme, porque el camino de lectura del almacén puede seguir
// devolviendo el registro durante su ventana de consistencia eventual.
// Se inyecta como dependencia para poder reiniciarlo entre tests.
type DeletionMask struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewDeletionMask() *DeletionMask {
	return &DeletionMask{
		ids: make(map[string]struct{}),
	}
}

// Add marca un id como borrado. No existe operación inversa durante la
// sesión.
func (m *DeletionMask) Add(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = struct{}{}
}

func (m *DeletionMask) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[id]
	return ok
}

func (m *DeletionMask) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ids)
}
