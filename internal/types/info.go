package types

// Info records, for every expression node the inferencer visits, the
// arena index of its type. Keyed by node identity (all ast
// nodes are pointers), mirroring go/types.Info's Types map rather than
// mutating a field on the tree nodes themselves.
type Info struct {
	arena *Arena
	types map[any]int
}

func NewInfo(a *Arena) *Info {
	return &Info{arena: a, types: map[any]int{}}
}

func (i *Info) Arena() *Arena { return i.arena }

func (i *Info) Set(node any, v int) { i.types[node] = v }

func (i *Info) Get(node any) (int, bool) {
	v, ok := i.types[node]
	return v, ok
}

// TypeOf returns the resolved representative index of node's type, or -1
// if node was never visited.
func (i *Info) TypeOf(node any) int {
	v, ok := i.types[node]
	if !ok {
		return -1
	}
	return i.arena.Find(v)
}

func (i *Info) String(node any) string {
	v, ok := i.types[node]
	if !ok {
		return "?"
	}
	return i.arena.String(v)
}
