// Package command parses free-text inbound SMS bodies into commands.
// Parsing never fails: anything unrecognized becomes Unknown and the
// caller answers with a help message.
package command

import (
	"strings"
	"time"
)

// Command is one parsed inbound SMS.
type Command interface {
	isCommand()
}

// Register enrolls a new baby: DAFTAR ibu;bayi;tgl_lahir;desa
// (REG and '#' separators accepted for the legacy format).
type Register struct {
	MotherName string
	BabyName   string
	BirthDate  time.Time
	Village    string
}

// ReportDone records a completed immunization: LAPOR id_bayi dosis.
type ReportDone struct {
	BabyID   string
	DoseCode string
}

// Info requests a baby's schedule summary: INFO id_bayi.
type Info struct {
	BabyID string
}

// Help requests the command guide.
type Help struct{}

// Unknown wraps input that matched no command.
type Unknown struct {
	RawText string
}

func (Register) isCommand()   {}
func (ReportDone) isCommand() {}
func (Info) isCommand()       {}
func (Help) isCommand()       {}
func (Unknown) isCommand()    {}

// Accepted birth date layouts. Day-before-month is the fixed
// interpretation for the ambiguous numeric forms; the ISO layout is
// unambiguous. First layout that parses wins.
var dateLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
}

// ParseDate tries the accepted date layouts in order.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Parse turns a raw SMS body into a Command. Keywords are matched
// case-insensitively and extra spacing is tolerated.
func Parse(raw string) Command {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Unknown{RawText: raw}
	}

	keyword, rest := splitKeyword(text)
	switch strings.ToUpper(keyword) {
	case "DAFTAR", "REG":
		return parseRegister(raw, rest)
	case "LAPOR", "SELESAI", "DONE":
		return parseReportDone(raw, rest)
	case "INFO":
		fields := splitFields(rest)
		if len(fields) != 1 || fields[0] == "" {
			return Unknown{RawText: raw}
		}
		return Info{BabyID: strings.ToUpper(fields[0])}
	case "HELP", "BANTUAN", "TOLONGAN":
		if strings.TrimSpace(rest) != "" {
			return Unknown{RawText: raw}
		}
		return Help{}
	}
	return Unknown{RawText: raw}
}

func parseRegister(raw, rest string) Command {
	fields := splitFields(rest)
	if len(fields) != 4 {
		return Unknown{RawText: raw}
	}
	mother, babyName, dateStr, village := fields[0], fields[1], fields[2], fields[3]
	if mother == "" || babyName == "" || village == "" {
		return Unknown{RawText: raw}
	}
	birthDate, ok := ParseDate(dateStr)
	if !ok {
		return Unknown{RawText: raw}
	}
	return Register{
		MotherName: mother,
		BabyName:   babyName,
		BirthDate:  birthDate,
		Village:    village,
	}
}

func parseReportDone(raw, rest string) Command {
	fields := splitFields(rest)
	// The legacy LAPOR format carried a trailing report date; it is
	// accepted and ignored, the completion time comes from the clock.
	if len(fields) == 3 {
		if _, ok := ParseDate(fields[2]); ok {
			fields = fields[:2]
		}
	}
	if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
		return Unknown{RawText: raw}
	}
	return ReportDone{
		BabyID:   strings.ToUpper(fields[0]),
		DoseCode: strings.ToUpper(fields[1]),
	}
}

// splitKeyword separates the leading command word from the argument
// tail, treating whitespace, '#' and ';' all as the first boundary.
func splitKeyword(text string) (keyword, rest string) {
	idx := strings.IndexFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '#' || r == ';'
	})
	if idx < 0 {
		return text, ""
	}
	return text[:idx], text[idx+1:]
}

// splitFields splits the argument tail on ';' or '#'. A tail without
// either separator is split on whitespace instead, so terse forms like
// "LAPOR LT-001 BCG" work.
func splitFields(rest string) []string {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}
	var parts []string
	if strings.ContainsAny(rest, ";#") {
		parts = strings.FieldsFunc(rest, func(r rune) bool {
			return r == ';' || r == '#'
		})
	} else {
		parts = strings.Fields(rest)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
