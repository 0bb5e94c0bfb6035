package models

import "strings"

// Hotkey is a global key combination: a virtual key code plus a modifier bitmask.
type Hotkey struct {
	KeyCode   uint32
	Modifiers uint32
}

var keyNames = map[uint32]string{
	0: "A", 1: "S", 2: "D", 3: "F", 4: "H", 5: "G", 6: "Z", 7: "X",
	8: "C", 9: "V", 11: "B", 12: "Q", 13: "W", 14: "E", 15: "R",
	16: "Y", 17: "T", 18: "1", 19: "2", 20: "3", 21: "4", 22: "6",
	23: "5", 24: "=", 25: "9", 26: "7", 27: "-", 28: "8", 29: "0",
	30: "]", 31: "O", 32: "U", 33: "[", 34: "I", 35: "P", 37: "L",
	38: "J", 39: "'", 40: "K", 41: ";", 42: "\\", 43: ",", 44: "/",
	45: "N", 46: "M", 47: ".", 50: "`", 65: ".", 67: "*", 69: "+",
	71: "Clear", 75: "/", 76: "Enter", 78: "-", 81: "=",
	82: "0", 83: "1", 84: "2", 85: "3", 86: "4", 87: "5",
	88: "6", 89: "7", 91: "8", 92: "9",
	36: "↩", 48: "⇥", 49: "Space", 51: "⌫", 53: "⎋",
	96: "F5", 97: "F6", 98: "F7", 99: "F3", 100: "F8",
	101: "F9", 103: "F11", 105: "F13", 107: "F14", 109: "F10",
	111: "F12", 113: "F15", 118: "F4", 119: "F2", 120: "F1",
	121: "F16", 122: "F17", 123: "←", 124: "→", 125: "↓", 126: "↑",
}

// String renders the combination in menu notation, e.g. "⇧⌘D".
func (h Hotkey) String() string {
	var b strings.Builder
	if h.Modifiers&ModControl != 0 {
		b.WriteString("⌃")
	}
	if h.Modifiers&ModOption != 0 {
		b.WriteString("⌥")
	}
	if h.Modifiers&ModShift != 0 {
		b.WriteString("⇧")
	}
	if h.Modifiers&ModCommand != 0 {
		b.WriteString("⌘")
	}
	name, ok := keyNames[h.KeyCode]
	if !ok {
		name = "?"
	}
	b.WriteString(name)
	return b.String()
}
