package id

// Gen generates the number uuid.
type Gen func() uint64

// Generator hands out identities. The red-black trees use it to stamp
// every tree with a non-zero ID, and every linked node carries the ID of
// the tree it belongs to.
type Generator interface {
	Number() uint64
	Str() string
}

var (
	_ Generator = (*defaultID)(nil)
)

type defaultID struct {
	number Gen
	str    func() string
}

func (id *defaultID) Number() uint64 { return id.number() }
func (id *defaultID) Str() string    { return id.str() }
