package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Style inspections
	StyInfo                Code = 1000
	StyTrailingWhitespace  Code = 1001
	StyMissingFinalNewline Code = 1002
	StyTabIndent           Code = 1003
	StyNotNFC              Code = 1004
	StyTodoWithoutOwner    Code = 1005

	// IO errors
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IOWriteError    Code = 4002
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	StyInfo:                "Style information",
	StyTrailingWhitespace:  "Trailing whitespace",
	StyMissingFinalNewline: "Missing final newline",
	StyTabIndent:           "Tab characters in indentation",
	StyNotNFC:              "Text is not in Unicode NFC form",
	StyTodoWithoutOwner:    "TODO without an owner",
	IOInfo:                 "IO information",
	IOLoadFileError:        "Failed to load file",
	IOWriteError:           "Failed to write file",
}

// ID returns the stable short identifier, e.g. STY1001.
func (c Code) ID() string {
	ic := int(c)
	switch {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("STY%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
