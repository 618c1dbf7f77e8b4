package normalize

import "fmt"

// UnresolvedProjectionWarning records a header whose coordinate system could
// not be resolved. Reprojection is skipped.
type UnresolvedProjectionWarning struct {
	Text string
}

func (w *UnresolvedProjectionWarning) Error() string {
	if w.Text == "" {
		return "no projection declared in header"
	}
	return fmt.Sprintf("unresolved projection %q", w.Text)
}

// MissingPrerequisiteColumn records a pass skipped for lack of an input.
type MissingPrerequisiteColumn struct {
	Pass   string
	Column string
}

func (w *MissingPrerequisiteColumn) Error() string {
	return fmt.Sprintf("%s: missing column %q", w.Pass, w.Column)
}

// UnparsedTimestampsWarning records date/time cells that no layout matched.
type UnparsedTimestampsWarning struct {
	Count int
	First string
}

func (w *UnparsedTimestampsWarning) Error() string {
	return fmt.Sprintf("%d timestamps could not be parsed (first %q)", w.Count, w.First)
}
