package database

import (
	"bufio"
	"io"
	"strings"

	"github.com/blastrain/vitess-sqlparser/sqlparser"
)

// scrubbedOptions are option rows holding license keys or license
// transients that must not survive a dump import into a local site.
var scrubbedOptions = []string{
	"license_number",
	"_elementor_pro_license_data",
	"_elementor_pro_license_data_fallback",
	"_elementor_pro_license_v2_data",
	"_elementor_pro_license_v2_data_fallback",
	"_transient_rg_gforms_license",
	"_transient_timeout_rg_gforms_license",
	"_transient_timeout_uael_license_status",
	"_transient_timeout_astra-addon_license_status",
	"astra-addon_license_key",
	"astra_addon_license_key",
	"edd_fs_lock_atomic_wp_rocket",
	"wp_rocket_settings",
}

// Sanitizer strips license-bearing option rows from a SQL dump before
// it is imported. Statements the parser cannot understand pass through
// untouched; sanitizing is best-effort filtering, not validation.
type Sanitizer struct {
	drop map[string]struct{}
}

// NewSanitizer builds a Sanitizer for the standard scrub list plus any
// extra option names.
func NewSanitizer(extra ...string) *Sanitizer {
	drop := make(map[string]struct{}, len(scrubbedOptions)+len(extra))
	for _, name := range scrubbedOptions {
		drop[name] = struct{}{}
	}
	for _, name := range extra {
		drop[name] = struct{}{}
	}
	return &Sanitizer{drop: drop}
}

// Sanitize copies a SQL dump from reader to writer, dropping INSERT
// statements into an options table that carry a scrubbed option row.
func (s *Sanitizer) Sanitize(reader io.Reader, writer io.Writer) error {
	buffered := bufio.NewReader(reader)
	var stmt strings.Builder

	for {
		line, readErr := buffered.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return readErr
		}
		stmt.WriteString(line)

		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			text := stmt.String()
			stmt.Reset()
			if s.keep(text) {
				if _, err := io.WriteString(writer, text); err != nil {
					return err
				}
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	// Trailing text without a terminator passes through.
	if stmt.Len() > 0 {
		if _, err := io.WriteString(writer, stmt.String()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sanitizer) keep(text string) bool {
	parsed, err := sqlparser.Parse(text)
	if err != nil {
		return true
	}

	insert, ok := parsed.(*sqlparser.Insert)
	if !ok {
		return true
	}
	if !strings.Contains(insert.Table.Name.String(), "options") {
		return true
	}

	values, ok := insert.Rows.(sqlparser.Values)
	if !ok {
		return true
	}

	for _, row := range values {
		if len(row) < 2 {
			continue
		}
		// option_name is the second column of a wp options tuple.
		val, ok := row[1].(*sqlparser.SQLVal)
		if !ok {
			continue
		}
		if _, drop := s.drop[string(val.Val)]; drop {
			return false
		}
	}
	return true
}
