package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// AddressParts is the structured form of a delivery address.
type AddressParts struct {
	Street   string `json:"street"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	Province string `json:"province"`
}

// Marker tokens follow Vietnamese administrative prefixes plus their English equivalents.
var (
	wardMarkers     = []string{"phường", "xã", "thị trấn", "p.", "ward", "commune"}
	districtMarkers = []string{"quận", "huyện", "thị xã", "thành phố", "tp.", "q.", "district"}
)

// JoinAddress joins the non-empty parts with ", ".
func JoinAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// ParseAddress splits a legacy single-line address into structured parts.
// It is a best-effort shim for addresses saved before structured fields existed:
// segments that match none of the markers are bucketed by position, so addresses
// in other conventions end up mostly in Street and Province. It never fails.
func ParseAddress(full string) AddressParts {
	full = strings.TrimSpace(full)
	segments := splitSegments(full)
	if len(segments) <= 2 {
		return AddressParts{Street: full}
	}

	const (
		none = iota
		street
		ward
		district
		province
	)
	kinds := make([]int, len(segments))
	haveWard, haveDistrict := false, false
	first, last := -1, -1
	for i, seg := range segments {
		switch {
		case !haveWard && hasMarker(seg, wardMarkers):
			kinds[i], haveWard = ward, true
		case !haveDistrict && hasMarker(seg, districtMarkers):
			kinds[i], haveDistrict = district, true
		default:
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}

	if first < 0 {
		// No markers: the trailing one or two segments are the province.
		tail := 1
		if len(segments) >= 4 {
			tail = 2
		}
		for i := range segments {
			if i >= len(segments)-tail {
				kinds[i] = province
			} else {
				kinds[i] = street
			}
		}
	} else {
		prev := none
		for i := range segments {
			switch {
			case kinds[i] != none:
				prev = kinds[i]
			case i < first:
				kinds[i] = street
			case i > last:
				kinds[i] = province
			default:
				kinds[i] = prev
			}
		}
	}

	buckets := map[int][]string{}
	for i, seg := range segments {
		buckets[kinds[i]] = append(buckets[kinds[i]], seg)
	}
	return AddressParts{
		Street:   JoinAddress(buckets[street]...),
		Ward:     JoinAddress(buckets[ward]...),
		District: JoinAddress(buckets[district]...),
		Province: JoinAddress(buckets[province]...),
	}
}

func splitSegments(s string) []string {
	var segments []string
	for _, seg := range strings.Split(s, ",") {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// hasMarker reports whether seg starts with one of the markers as a whole token.
func hasMarker(seg string, markers []string) bool {
	lower := strings.ToLower(seg)
	for _, m := range markers {
		if !strings.HasPrefix(lower, m) {
			continue
		}
		rest := lower[len(m):]
		if rest == "" || strings.HasSuffix(m, ".") {
			return true
		}
		r, _ := utf8.DecodeRuneInString(rest)
		if unicode.IsSpace(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
