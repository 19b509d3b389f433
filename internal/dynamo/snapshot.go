package dynamo

// Entry is the working position and velocity of one particle during a step.
type Entry struct {
	Position Vec3
	Velocity Vec3
}

// Snapshot is the per-step working copy of particle state, keyed by ID and
// kept in insertion order. Writes are visible to every later read in the
// same step.
type Snapshot struct {
	ids     []ID
	entries []Entry
	index   map[ID]int
}

func NewSnapshot(capacity int) *Snapshot {
	return &Snapshot{
		ids:     make([]ID, 0, capacity),
		entries: make([]Entry, 0, capacity),
		index:   make(map[ID]int, capacity),
	}
}

func (s *Snapshot) Reset() {
	s.ids = s.ids[:0]
	s.entries = s.entries[:0]
	clear(s.index)
}

// Put appends an entry for id, or overwrites it if id is already present.
func (s *Snapshot) Put(id ID, e Entry) int {
	if i, ok := s.index[id]; ok {
		s.entries[i] = e
		return i
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	s.entries = append(s.entries, e)
	return len(s.ids) - 1
}

func (s *Snapshot) Get(id ID) (Entry, bool) {
	i, ok := s.index[id]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Set updates an existing entry. It reports false if id is unknown.
func (s *Snapshot) Set(id ID, e Entry) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.entries[i] = e
	return true
}

func (s *Snapshot) Index(id ID) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

func (s *Snapshot) At(i int) Entry       { return s.entries[i] }
func (s *Snapshot) SetAt(i int, e Entry) { s.entries[i] = e }
func (s *Snapshot) IDAt(i int) ID        { return s.ids[i] }
func (s *Snapshot) Len() int             { return len(s.ids) }

func (s *Snapshot) IDs() []ID {
	out := make([]ID, len(s.ids))
	copy(out, s.ids)
	return out
}
