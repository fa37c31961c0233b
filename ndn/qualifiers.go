/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import "bytes"

// MatchesQualifiers implements is_qualifier_match (spec.md §4.3): given
// a content object that has already passed the prefix match at
// prefixComps components, check publisher, exclude filter, and
// min/max suffix-component-count selectors. Child-selector ordering
// preference is not a qualifier test; it governs which of several
// qualifying hits the traversal keeps (spec.md §4.3 step 3).
func MatchesQualifiers(interest *Interest, content *ContentObject, prefixComps int) bool {
	if len(interest.PublisherDigest) > 0 && !bytes.Equal(interest.PublisherDigest, content.PublisherDigest) {
		return false
	}

	suffix := content.Name.NumComponents() - prefixComps
	if interest.MinSuffixComponents != nil && suffix < *interest.MinSuffixComponents {
		return false
	}
	if interest.MaxSuffixComponents != nil && suffix > *interest.MaxSuffixComponents {
		return false
	}

	if len(interest.Exclude) > 0 && content.Name.NumComponents() > prefixComps {
		next := content.Name.Component(prefixComps)
		for _, ex := range interest.Exclude {
			if bytes.Equal(ex, next) {
				return false
			}
		}
	}

	return true
}
