package bamprovider

import (
	"fmt"

	"github.com/antzucaro/matchr"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// RefByName finds a sam.Reference with the given name. It returns nil if a
// reference is not found.
func RefByName(h *sam.Header, refName string) *sam.Reference {
	for _, ref := range h.Refs() {
		if ref.Name() == refName {
			return ref
		}
	}
	return nil
}

// closestRefName returns the header reference name with the smallest edit
// distance to refName.
func closestRefName(h *sam.Header, refName string) string {
	best, bestDist := "", -1
	for _, ref := range h.Refs() {
		if d := matchr.Levenshtein(refName, ref.Name()); bestDist < 0 || d < bestDist {
			best, bestDist = ref.Name(), d
		}
	}
	return best
}

// lookupRef resolves refName against the header; "" selects the first
// reference.  An unknown name is an errors.Invalid error which names the
// closest match.
func lookupRef(h *sam.Header, refName string) (*sam.Reference, error) {
	refs := h.Refs()
	if len(refs) == 0 {
		return nil, errors.E(errors.Invalid, "bamprovider: BAM header has no references")
	}
	if refName == "" {
		return refs[0], nil
	}
	if ref := RefByName(h, refName); ref != nil {
		return ref, nil
	}
	return nil, errors.E(errors.Invalid, fmt.Sprintf("bamprovider: reference '%s' not found (did you mean '%s'?)", refName, closestRefName(h, refName)))
}
