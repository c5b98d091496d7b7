package macho

import "strconv"

type intName struct {
	i uint32
	s string
}

// lookupName returns the table entry for i.
func lookupName(i uint32, names []intName) (string, bool) {
	for _, n := range names {
		if n.i == i {
			return n.s, true
		}
	}
	return "", false
}

func stringName(i uint32, names []intName, goSyntax bool) string {
	if s, ok := lookupName(i, names); ok {
		if goSyntax {
			return "macho." + s
		}
		return s
	}
	return strconv.FormatUint(uint64(i), 10)
}
