package httpmetrics

import (
	"regexp"
	"strings"
)

// Record ids are UUIDs; numeric and 24-char hex segments cover ids handed
// out by older deployments and Mongo ObjectIDs.
var idSegment = regexp.MustCompile(`^(?:[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}|[0-9]+|[0-9a-f]{24})$`)

// NormalizePath collapses id segments into {id} so unmatched paths do not
// blow up metric label cardinality.
func NormalizePath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if idSegment.MatchString(seg) {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
