package transform

import "strings"

// Handle names a resize handle by compass direction.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

var handles = []Handle{HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW}

// ParseHandle validates a handle name coming from the host.
func ParseHandle(s string) (Handle, bool) {
	h := Handle(strings.ToLower(s))
	for _, v := range handles {
		if v == h {
			return h, true
		}
	}
	return "", false
}

// Has reports whether the handle contains the given direction letter.
func (h Handle) Has(dir byte) bool {
	return strings.IndexByte(string(h), dir) >= 0
}

// IsCorner reports whether h is one of the aspect-locked corner handles.
func (h Handle) IsCorner() bool { return len(h) == 2 }
