package app

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const maxTracedQueryLen = 512

// postgresDSN is a connection string plus what the tracer needs from it.
type postgresDSN struct {
	conn     string
	database string
}

// parsePostgresDSN accepts both URL and key=value forms. binaryParams sets
// lib/pq's binary_parameters unless the DSN already sets it.
func parsePostgresDSN(raw string, binaryParams bool) postgresDSN {
	raw = strings.TrimSpace(raw)
	dsn := postgresDSN{conn: raw}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		dsn.database = keywordValue(raw, "dbname")
		if binaryParams && keywordValue(raw, "binary_parameters") == "" {
			dsn.conn = raw + " binary_parameters=yes"
		}
		return dsn
	}

	dsn.database = strings.TrimPrefix(u.Path, "/")
	if binaryParams {
		q := u.Query()
		if !q.Has("binary_parameters") {
			q.Set("binary_parameters", "yes")
			u.RawQuery = q.Encode()
			dsn.conn = u.String()
		}
	}
	return dsn
}

func keywordValue(raw, key string) string {
	prefix := key + "="
	for _, field := range strings.Fields(raw) {
		if v, ok := strings.CutPrefix(field, prefix); ok {
			return strings.Trim(v, `'"`)
		}
	}
	return ""
}

// compactQuery puts a statement on one line for span attributes.
func compactQuery(query string) string {
	out := strings.Join(strings.Fields(query), " ")
	if len(out) <= maxTracedQueryLen {
		return out
	}
	cut := maxTracedQueryLen
	for cut > 0 && !utf8.RuneStart(out[cut]) {
		cut--
	}
	return out[:cut] + "..."
}
