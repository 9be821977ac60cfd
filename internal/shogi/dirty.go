package shogi

// Location is where a piece sits before or after a move: either a board
// square or its owner's hand.
type Location struct {
	sq     Square
	inHand bool
}

// InHand is the location of any piece held in hand.
var InHand = Location{sq: NoSquare, inHand: true}

// OnBoard returns the location of a board square.
func OnBoard(sq Square) Location {
	return Location{sq: sq}
}

// Square returns the board square and true, or NoSquare and false for the hand.
func (l Location) Square() (Square, bool) {
	if l.inHand {
		return NoSquare, false
	}
	return l.sq, true
}

// IsHand returns true if the location is a hand.
func (l Location) IsHand() bool {
	return l.inHand
}

// String returns the square in USI notation, or "hand".
func (l Location) String() string {
	if l.inHand {
		return "hand"
	}
	return l.sq.String()
}

// Role tags what happened to a piece during a move.
type Role uint8

const (
	// RoleMover is the piece the side to move moved or dropped.
	RoleMover Role = iota
	// RoleCaptured is a piece taken off the board into the capturer's hand.
	RoleCaptured
)

// String returns the role name.
func (r Role) String() string {
	if r == RoleCaptured {
		return "captured"
	}
	return "mover"
}

// DirtyEntry describes one piece changed by a move.
type DirtyEntry struct {
	Role Role

	// Piece is the piece as it stood at From.
	Piece Piece
	// Result is the piece as it stands at To: the promoted piece for a
	// promoting move, the demoted piece now owned by the capturer for a
	// captured entry, and Piece otherwise.
	Result Piece

	From Location
	To   Location
}

// MaxDirtyEntries is the most pieces a single shogi move can change.
const MaxDirtyEntries = 2

// DirtyPiece records the pieces changed by the last move.
type DirtyPiece struct {
	entries [MaxDirtyEntries]DirtyEntry
	n       int
}

// Add appends an entry.
func (d *DirtyPiece) Add(e DirtyEntry) {
	d.entries[d.n] = e
	d.n++
}

// Len returns the number of entries.
func (d *DirtyPiece) Len() int {
	return d.n
}

// At returns the entry at index i.
func (d *DirtyPiece) At(i int) *DirtyEntry {
	return &d.entries[i]
}

// Mover returns the entry of the moving piece.
func (d *DirtyPiece) Mover() *DirtyEntry {
	for i := 0; i < d.n; i++ {
		if d.entries[i].Role == RoleMover {
			return &d.entries[i]
		}
	}
	return nil
}

// Reset clears the record.
func (d *DirtyPiece) Reset() {
	d.n = 0
}
