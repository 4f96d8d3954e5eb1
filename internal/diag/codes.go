package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexTokenTooLong             Code = 1005
	LexUnterminatedLongString   Code = 1006
	LexInvalidEscape            Code = 1007
	LexInvalidLongDelimiter     Code = 1008

	// Парсерные
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynExpectEnd          Code = 2002
	SynExpectThen         Code = 2003
	SynExpectDo           Code = 2004
	SynExpectUntil        Code = 2005
	SynExpectIdentifier   Code = 2006
	SynExpectExpression   Code = 2007
	SynExpectAssign       Code = 2008
	SynExpectRParen       Code = 2009
	SynExpectRBracket     Code = 2010
	SynExpectRBrace       Code = 2011
	SynExpectInOrAssign   Code = 2012
	SynExpectLabelEnd     Code = 2013
	SynExpectStatement    Code = 2014
	SynExpectArgs         Code = 2015
	SynExpectFunctionName Code = 2016
	SynReturnNotLast      Code = 2017
	SynInvalidAttrib      Code = 2018
	SynMultipleToClose    Code = 2019
	SynVersionFeature     Code = 2020
	SynVarargOutside      Code = 2021
	SynNotAssignable      Code = 2022
	SynExpectComma        Code = 2023

	// Ресурсные
	ResInfo      Code = 3000
	ResTooDeep   Code = 3001
	ResCancelled Code = 3002

	// I/O (driver)
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedString:       "Unterminated string literal",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexBadNumber:                "Malformed number",
		LexTokenTooLong:             "Token too long",
		LexUnterminatedLongString:   "Unterminated long string",
		LexInvalidEscape:            "Invalid escape sequence",
		LexInvalidLongDelimiter:     "Invalid long string delimiter",
		SynInfo:                     "Syntax information",
		SynUnexpectedToken:          "Unexpected token",
		SynExpectEnd:                "Expected 'end'",
		SynExpectThen:               "Expected 'then'",
		SynExpectDo:                 "Expected 'do'",
		SynExpectUntil:              "Expected 'until'",
		SynExpectIdentifier:         "Expected identifier",
		SynExpectExpression:         "Expected expression",
		SynExpectAssign:             "Expected '='",
		SynExpectRParen:             "Expected ')'",
		SynExpectRBracket:           "Expected ']'",
		SynExpectRBrace:             "Expected '}'",
		SynExpectInOrAssign:         "Expected '=' or 'in'",
		SynExpectLabelEnd:           "Expected '::'",
		SynExpectStatement:          "Expected statement",
		SynExpectArgs:               "Expected function arguments",
		SynExpectFunctionName:       "Expected function name",
		SynReturnNotLast:            "'return' must be the last statement",
		SynInvalidAttrib:            "Unknown variable attribute",
		SynMultipleToClose:          "Multiple to-be-closed variables in local list",
		SynVersionFeature:           "Feature not available in this Lua version",
		SynVarargOutside:            "Cannot use '...' outside a vararg function",
		SynNotAssignable:            "Expression is not assignable",
		SynExpectComma:              "Expected ','",
		ResInfo:                     "Resource information",
		ResTooDeep:                  "Nesting too deep",
		ResCancelled:                "Parse cancelled",
		IOInfo:                      "I/O information",
		IOLoadFileError:             "Failed to load file",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode resolves a string ID such as "SYN2002" back to its Code.
func ParseCode(id string) (Code, bool) {
	for c := range codeDescription {
		if c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
