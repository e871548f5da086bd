package backup

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

type Service interface {
	Export(ctx context.Context, w io.Writer) error
	Restore(ctx context.Context, script []byte) (*RestoreResult, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Export(ctx context.Context, w io.Writer) error {
	fmt.Fprintf(w, "-- cafepos backup %s\n", s.now().UTC().Format(time.RFC3339))
	return s.repo.Dump(ctx, w, Tables)
}

var insertInto = regexp.MustCompile(`(?is)^INSERT\s+INTO\s+"?([a-z_][a-z0-9_]*)"?\s*\(`)

func (s *service) Restore(ctx context.Context, script []byte) (*RestoreResult, error) {
	stmts, err := split(script)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, apperr.Invalidf("backup contains no statements")
	}
	res := &RestoreResult{Statements: len(stmts), Rows: map[string]int{}}
	for i, stmt := range stmts {
		m := insertInto.FindStringSubmatch(stmt)
		if m == nil {
			return nil, apperr.Invalidf("statement %d is not an INSERT INTO", i+1)
		}
		table := strings.ToLower(m[1])
		if !known(table) {
			return nil, apperr.Invalidf("statement %d targets unknown table %q", i+1, m[1])
		}
		res.Rows[table]++
	}
	if err := s.repo.Replace(ctx, Tables, stmts); err != nil {
		return nil, err
	}
	return res, nil
}

// split cuts a script into statements on semicolons that sit outside string
// literals, quoted identifiers, dollar-quoted bodies and comments. Comments are
// dropped.
func split(script []byte) ([]string, error) {
	src := string(script)
	var (
		stmts []string
		cur   strings.Builder
	)
	flush := func() {
		if st := strings.TrimSpace(cur.String()); st != "" {
			stmts = append(stmts, st)
		}
		cur.Reset()
	}
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case strings.HasPrefix(src[i:], "--"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				i = len(src)
			} else {
				i += end
			}
			cur.WriteByte(' ')
		case strings.HasPrefix(src[i:], "/*"):
			end, err := blockCommentEnd(src, i)
			if err != nil {
				return nil, err
			}
			i = end
			cur.WriteByte(' ')
		case c == '\'':
			escapes := i > 0 && (src[i-1] == 'E' || src[i-1] == 'e')
			end, err := quotedEnd(src, i, '\'', escapes)
			if err != nil {
				return nil, err
			}
			cur.WriteString(src[i:end])
			i = end
		case c == '"':
			end, err := quotedEnd(src, i, '"', false)
			if err != nil {
				return nil, err
			}
			cur.WriteString(src[i:end])
			i = end
		case c == '$' && (i == 0 || !identChar(src[i-1])):
			tag := dollarTag.FindString(src[i:])
			if tag == "" {
				cur.WriteByte(c)
				i++
				continue
			}
			end := strings.Index(src[i+len(tag):], tag)
			if end < 0 {
				return nil, apperr.Invalidf("unterminated dollar-quoted string")
			}
			end = i + len(tag) + end + len(tag)
			cur.WriteString(src[i:end])
			i = end
		case c == ';':
			flush()
			i++
		default:
			cur.WriteByte(c)
			i++
		}
	}
	flush()
	return stmts, nil
}

var dollarTag = regexp.MustCompile(`^\$([A-Za-z_][A-Za-z0-9_]*)?\$`)

func identChar(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// quotedEnd returns the index just past the literal opened at src[start].
// A doubled quote is an escaped quote; with escapes a backslash escapes the
// next byte.
func quotedEnd(src string, start int, quote byte, escapes bool) (int, error) {
	for i := start + 1; i < len(src); i++ {
		switch {
		case escapes && src[i] == '\\':
			i++
		case src[i] == quote:
			if i+1 < len(src) && src[i+1] == quote {
				i++
				continue
			}
			return i + 1, nil
		}
	}
	if quote == '"' {
		return 0, apperr.Invalidf("unterminated quoted identifier")
	}
	return 0, apperr.Invalidf("unterminated string literal")
}

// blockCommentEnd returns the index just past the comment opened at
// src[start]. Block comments nest.
func blockCommentEnd(src string, start int) (int, error) {
	depth := 0
	for i := start; i+1 < len(src); {
		switch src[i : i+2] {
		case "/*":
			depth++
			i += 2
		case "*/":
			depth--
			i += 2
			if depth == 0 {
				return i, nil
			}
		default:
			i++
		}
	}
	return 0, apperr.Invalidf("unterminated comment")
}
