package evaluator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timeToken is one element of a date pattern such as "yyyy-MM-dd'T'HH:mm":
// either a run of one pattern letter or literal text.
type timeToken struct {
	letter  byte
	count   int
	literal string
}

const patternLetters = "GyYMLwWDdFEuaHkKhmsSzZX"

// parseTimePattern splits a date pattern into tokens. Letters are pattern
// fields, text inside single quotes is literal and '' is a single quote.
func parseTimePattern(p string) ([]timeToken, error) {
	var tokens []timeToken
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, timeToken{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(p); {
		c := p[i]
		switch {
		case c == '\'':
			if i+1 < len(p) && p[i+1] == '\'' {
				lit.WriteByte('\'')
				i += 2
				continue
			}
			end := strings.IndexByte(p[i+1:], '\'')
			if end < 0 {
				return nil, fmt.Errorf("Unterminated quote")
			}
			lit.WriteString(strings.ReplaceAll(p[i+1:i+1+end], "''", "'"))
			i += end + 2
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			if strings.IndexByte(patternLetters, c) < 0 {
				return nil, fmt.Errorf("Illegal pattern character '%c'", c)
			}
			j := i
			for j < len(p) && p[j] == c {
				j++
			}
			flush()
			tokens = append(tokens, timeToken{letter: c, count: j - i})
			i = j
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return tokens, nil
}

// formatTime renders t with a parsed date pattern.
func formatTime(t time.Time, tokens []timeToken) string {
	var sb strings.Builder
	for _, tk := range tokens {
		if tk.letter == 0 {
			sb.WriteString(tk.literal)
			continue
		}
		sb.WriteString(formatField(t, tk))
	}
	return sb.String()
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return s
	}
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func formatField(t time.Time, tk timeToken) string {
	n := tk.count
	switch tk.letter {
	case 'G':
		if t.Year() <= 0 {
			return "BC"
		}
		return "AD"
	case 'y':
		if n == 2 {
			return pad(t.Year()%100, 2)
		}
		return pad(t.Year(), n)
	case 'Y':
		y, _ := t.ISOWeek()
		if n == 2 {
			return pad(y%100, 2)
		}
		return pad(y, n)
	case 'M', 'L':
		switch {
		case n >= 4:
			return t.Month().String()
		case n == 3:
			return t.Month().String()[:3]
		}
		return pad(int(t.Month()), n)
	case 'w':
		_, w := t.ISOWeek()
		return pad(w, n)
	case 'W':
		first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return pad((t.Day()+int(first.Weekday())-1)/7+1, n)
	case 'D':
		return pad(t.YearDay(), n)
	case 'd':
		return pad(t.Day(), n)
	case 'F':
		return pad((t.Day()-1)/7+1, n)
	case 'E':
		if n >= 4 {
			return t.Weekday().String()
		}
		return t.Weekday().String()[:3]
	case 'u':
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7
		}
		return pad(wd, n)
	case 'a':
		if t.Hour() < 12 {
			return "AM"
		}
		return "PM"
	case 'H':
		return pad(t.Hour(), n)
	case 'k':
		h := t.Hour()
		if h == 0 {
			h = 24
		}
		return pad(h, n)
	case 'K':
		return pad(t.Hour()%12, n)
	case 'h':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		return pad(h, n)
	case 'm':
		return pad(t.Minute(), n)
	case 's':
		return pad(t.Second(), n)
	case 'S':
		return pad(t.Nanosecond()/int(time.Millisecond), n)
	case 'z':
		return t.Format("MST")
	case 'Z':
		return t.Format("-0700")
	case 'X':
		switch n {
		case 1:
			return t.Format("Z07")
		case 2:
			return t.Format("Z0700")
		}
		return t.Format("Z07:00")
	}
	return ""
}

// parseLayout translates a parsed date pattern into a layout for
// time.Parse. Fields that time.Parse cannot read are rejected.
func parseLayout(tokens []timeToken) (string, error) {
	var sb strings.Builder
	for _, tk := range tokens {
		n := tk.count
		switch tk.letter {
		case 0:
			sb.WriteString(tk.literal)
		case 'y':
			if n == 2 {
				sb.WriteString("06")
			} else {
				sb.WriteString("2006")
			}
		case 'M':
			switch {
			case n >= 4:
				sb.WriteString("January")
			case n == 3:
				sb.WriteString("Jan")
			case n == 2:
				sb.WriteString("01")
			default:
				sb.WriteString("1")
			}
		case 'd':
			sb.WriteString(choose(n, "2", "02"))
		case 'D':
			sb.WriteString("002")
		case 'E':
			if n >= 4 {
				sb.WriteString("Monday")
			} else {
				sb.WriteString("Mon")
			}
		case 'a':
			sb.WriteString("PM")
		case 'H':
			sb.WriteString("15")
		case 'h':
			sb.WriteString(choose(n, "3", "03"))
		case 'm':
			sb.WriteString(choose(n, "4", "04"))
		case 's':
			sb.WriteString(choose(n, "5", "05"))
		case 'S':
			layout := sb.String()
			if !strings.HasSuffix(layout, ".") && !strings.HasSuffix(layout, ",") {
				return "", fmt.Errorf("Pattern letter 'S' must follow a '.' or ','")
			}
			sb.WriteString(strings.Repeat("0", n))
		case 'z':
			sb.WriteString("MST")
		case 'Z':
			sb.WriteString("-0700")
		case 'X':
			switch n {
			case 1:
				sb.WriteString("Z07")
			case 2:
				sb.WriteString("Z0700")
			default:
				sb.WriteString("Z07:00")
			}
		default:
			return "", fmt.Errorf("Pattern letter '%c' is not supported for parsing", tk.letter)
		}
	}
	return sb.String(), nil
}

func choose(n int, short, long string) string {
	if n >= 2 {
		return long
	}
	return short
}
