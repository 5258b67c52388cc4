package arenatree

import (
	"fmt"

	"github.com/hupe1980/arenatree/internal/arena"
)

// Token is a handle to a node in an Arena.
// Tokens are comparable and may be used as map keys.
type Token struct {
	index uint32
	gen   uint32
}

// IsZero reports whether t is the absent token.
func (t Token) IsZero() bool { return t.index == 0 }

// Index returns the slot index of t.
func (t Token) Index() uint32 { return t.index }

// Generation returns the slot generation t was issued with.
func (t Token) Generation() uint32 { return t.gen }

func (t Token) String() string {
	if t.IsZero() {
		return "Token(nil)"
	}

	return fmt.Sprintf("Token(%d@%d)", t.index, t.gen)
}

func (t Token) ref() arena.Ref { return arena.Ref{Index: t.index, Gen: t.gen} }

func tokenOf(r arena.Ref) Token { return Token{index: r.Index, gen: r.Gen} }
