package model

// PlayerIDLength is the required length of a player identity token.
const PlayerIDLength = 20

// IsValidPlayerID reports whether id is a well-formed player identity:
// exactly 20 characters, each an ASCII digit ('0'-'9'). A malformed id
// is a normal protocol outcome (the client is told to generate a fresh
// one), not an error.
func IsValidPlayerID(id PlayerID) bool {
	if len(id) != PlayerIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}
