// Package schema maps building names to their workbook columns.
//
// The workbook encodes building identity in column headers of the form
// "<Building> CHW (kbtuh)" / "<Building> MTHW (kbtuh)". This package parses
// those headers once at load time into an explicit, validated mapping so the
// rest of the pipeline never string-matches column names again.
package schema

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// Series suffix tokens used in column headers.
const (
	SuffixCHW  = "CHW"
	SuffixMTHW = "MTHW"
)

// ErrDuplicateColumn reports two columns in one sheet resolving to the same
// building name.
var ErrDuplicateColumn = errors.New("duplicate column for building")

// Columns holds the two column headers belonging to one building.
type Columns struct {
	CHW  string
	MTHW string
}

// Schema is the validated mapping from building name to its two columns.
// Only buildings present in both sheets are included.
type Schema struct {
	columns   map[string]Columns
	buildings []string
}

// ExtractBuildingNames returns the building names encoded in the given
// column headers for one series suffix. Headers that do not match the
// naming convention are ignored.
//
// The prefix is non-greedy and binds at the first occurrence of the suffix
// token followed by " (kbtuh)". A building whose own name embeds that
// sequence gets truncated; that is a known fragility of the naming
// convention, detected (and warned about) in Build, not silently resolved.
func ExtractBuildingNames(columns []string, suffix string) []string {
	pattern := regexp.MustCompile(`^(.+?) ` + regexp.QuoteMeta(suffix) + ` \(kbtuh\)`)

	names := make([]string, 0, len(columns))
	for _, col := range columns {
		if m := pattern.FindStringSubmatch(col); m != nil {
			names = append(names, m[1])
		}
	}
	return names
}

// Build parses both header sets and returns the schema of buildings present
// in both sheets, sorted lexicographically and deduplicated. A sheet with
// two columns resolving to the same building is a naming-convention
// violation and fails with ErrDuplicateColumn.
func Build(chwColumns, mthwColumns []string, logger *slog.Logger) (*Schema, error) {
	chw, err := indexColumns(chwColumns, SuffixCHW, logger)
	if err != nil {
		return nil, err
	}
	mthw, err := indexColumns(mthwColumns, SuffixMTHW, logger)
	if err != nil {
		return nil, err
	}

	s := &Schema{columns: make(map[string]Columns)}
	for name, chwCol := range chw {
		mthwCol, ok := mthw[name]
		if !ok {
			continue
		}
		s.columns[name] = Columns{CHW: chwCol, MTHW: mthwCol}
		s.buildings = append(s.buildings, name)
	}
	sort.Strings(s.buildings)

	return s, nil
}

// indexColumns maps building name to column header for one suffix. A match
// that leaves trailing text in the header means the non-greedy prefix bound
// early; flag it rather than silently resolving.
func indexColumns(columns []string, suffix string, logger *slog.Logger) (map[string]string, error) {
	pattern := regexp.MustCompile(`^(.+?) ` + regexp.QuoteMeta(suffix) + ` \(kbtuh\)`)

	index := make(map[string]string, len(columns))
	for _, col := range columns {
		loc := pattern.FindStringSubmatchIndex(col)
		if loc == nil {
			continue
		}
		name := col[loc[2]:loc[3]]
		if loc[1] < len(col) || strings.Contains(name, " "+suffix+" ") {
			logger.Warn("ambiguous column header, non-greedy match may have truncated the building name",
				slog.String("column", col),
				slog.String("building", name))
		}
		if prev, exists := index[name]; exists {
			return nil, fmt.Errorf("%w: %q matched by %q and %q", ErrDuplicateColumn, name, prev, col)
		}
		index[name] = col
	}
	return index, nil
}

// Buildings returns the sorted names of buildings present in both sheets.
func (s *Schema) Buildings() []string {
	out := make([]string, len(s.buildings))
	copy(out, s.buildings)
	return out
}

// Lookup returns the column pair for a building.
func (s *Schema) Lookup(building string) (Columns, bool) {
	cols, ok := s.columns[building]
	return cols, ok
}
